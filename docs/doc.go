// Package docs provides generated OpenAPI documentation.
//
// Helios API
//
//	@title			Helios API
//	@version		1.0
//	@description	Medical report analysis and health-aware recipe suggestions.
//	@description	Most endpoints need a session from /api/auth/login, sent as the helios_session cookie or the X-Session-ID header.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/ssvibitha/Health-report-to-recipes
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
//
//	@securityDefinitions.apikey	SessionID
//	@in							header
//	@name						X-Session-ID
package docs

//go:generate swag init -g ../cmd/helios/serve.go -o ./swagger --parseDependency --parseInternal
