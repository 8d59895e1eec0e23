package config

// Command categories, in the order they appear in help output and docs.
const (
	CategoryInformation = "🕯️ Information"
	CategoryServer      = "📊 Server"
	CategoryRoles       = "👥 Roles"
	CategoryAdmin       = "🔒 Admin"
)

var CategoryWeights = map[string]int{
	CategoryInformation: 0,
	CategoryServer:      10,
	CategoryRoles:       20,
	CategoryAdmin:       30,
}
