package config

func loadProductionConfig(cfg *Config) {
	cfg.BookstorePort = envInt("BOOKSTORE_PORT", cfg.BookstorePort)
	cfg.GatewayPort = envInt("GATEWAY_PORT", cfg.GatewayPort)
	cfg.IdentityPort = envInt("IDENTITY_PORT", cfg.IdentityPort)
	cfg.LibraryPort = envInt("LIBRARY_PORT", cfg.LibraryPort)

	cfg.BookstoreDatabasePath = envString("BOOKSTORE_DATABASE_PATH", "/data/bookstore.sqlite")
	cfg.BookstoreURL = envString("BOOKSTORE_URL", "http://bookstore:3701")
	cfg.IdentityDatabasePath = envString("IDENTITY_DATABASE_PATH", "/data/identity.sqlite")
	cfg.IdentityURL = envString("IDENTITY_URL", "http://identity:3703")
	cfg.JWTSecret = envString("JWT_SECRET", "")
	cfg.LibraryDatabasePath = envString("LIBRARY_DATABASE_PATH", "/data/library.sqlite")
	cfg.LibraryURL = envString("LIBRARY_URL", "http://library:3702")
	cfg.ServerHost = ""
}
