package config

func loadDevelopmentConfig(cfg *Config) {
	cfg.BookstorePort = envInt("BOOKSTORE_PORT", cfg.BookstorePort)
	cfg.GatewayPort = envInt("GATEWAY_PORT", cfg.GatewayPort)
	cfg.IdentityPort = envInt("IDENTITY_PORT", cfg.IdentityPort)
	cfg.LibraryPort = envInt("LIBRARY_PORT", cfg.LibraryPort)

	cfg.BookstoreDatabasePath = "./tmp/bookstore.sqlite"
	cfg.BookstoreURL = "http://127.0.0.1:3701"
	cfg.DatabaseDebug = true
	cfg.IdentityDatabasePath = "./tmp/identity.sqlite"
	cfg.IdentityURL = "http://127.0.0.1:3703"
	cfg.JWTSecret = envString("JWT_SECRET", "development-secret")
	cfg.LibraryDatabasePath = "./tmp/library.sqlite"
	cfg.LibraryURL = "http://127.0.0.1:3702"
	cfg.ServerHost = "127.0.0.1"
}
