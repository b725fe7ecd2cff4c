package config

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecurityRefresh                      // Refresh token required
	SecurityAccess                       // Access token required
	SecurityAdmin                        // Access token of a SUPER_ADMIN required
)

// EndpointSecurityConfig maps HTTP route names to their required security level.
// Routes missing from the map require an access token.
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Auth - Public
	"auth.signup": SecurityPublic,
	"auth.login":  SecurityPublic,

	// Auth - Refresh Protected
	"auth.refresh": SecurityRefresh,

	// Health
	"healthz": SecurityPublic,

	// Properties - Public browse
	"properties.search": SecurityPublic,
	"properties.get":    SecurityPublic,

	// Profile
	"me.get":      SecurityAccess,
	"me.update":   SecurityAccess,
	"me.kyc":      SecurityAccess,
	"me.activity": SecurityAccess,

	// Properties - Owner
	"properties.create":       SecurityAccess,
	"properties.update":       SecurityAccess,
	"properties.availability": SecurityAccess,
	"properties.mine":         SecurityAccess,
	"properties.description":  SecurityAccess,

	// Viewings
	"viewings.request":      SecurityAccess,
	"viewings.list":         SecurityAccess,
	"viewings.get":          SecurityAccess,
	"viewings.status":       SecurityAccess,
	"viewings.cancel":       SecurityAccess,
	"viewings.confirm_rent": SecurityAccess,
	"viewings.reject":       SecurityAccess,

	// Applications
	"applications.apply":           SecurityAccess,
	"applications.list":            SecurityAccess,
	"applications.get":             SecurityAccess,
	"applications.status":          SecurityAccess,
	"applications.approve":         SecurityAccess,
	"applications.reject":          SecurityAccess,
	"applications.finalize":        SecurityAccess,
	"applications.platform_fee":    SecurityAccess,
	"applications.payment_method":  SecurityAccess,
	"applications.payment_success": SecurityAccess,
	"applications.payment_failure": SecurityAccess,
	"applications.offline_payment": SecurityAccess,
	"applications.offline_ack":     SecurityAccess,
	"applications.key_handover":    SecurityAccess,

	// Agreements
	"agreements.list":               SecurityAccess,
	"agreements.get":                SecurityAccess,
	"agreements.signature_initiate": SecurityAccess,
	"agreements.signature_verify":   SecurityAccess,

	// Ledger
	"payments.list":          SecurityAccess,
	"payments.summary":       SecurityAccess,
	"notifications.list":     SecurityAccess,
	"notifications.read_all": SecurityAccess,

	// Bills and disputes
	"bills.issue":      SecurityAccess,
	"bills.list":       SecurityAccess,
	"bills.pay":        SecurityAccess,
	"disputes.open":    SecurityAccess,
	"disputes.list":    SecurityAccess,
	"disputes.resolve": SecurityAdmin,

	// Uploads
	"uploads.create": SecurityAccess,
	"uploads.put":    SecurityAccess,
	"uploads.get":    SecurityAccess,

	// Admin
	"admin.users":                 SecurityAdmin,
	"admin.stats":                 SecurityAdmin,
	"admin.verifications":         SecurityAdmin,
	"admin.verification_review":   SecurityAdmin,
	"admin.property_availability": SecurityAdmin,
}

// LevelFor returns the security level of a route, defaulting to SecurityAccess.
func LevelFor(routeName string) SecurityLevel {
	if level, ok := EndpointSecurityConfig[routeName]; ok {
		return level
	}
	return SecurityAccess
}
