package config

func loadTestConfig(cfg *Config) {
	cfg.BookstoreDatabasePath = ":memory:"
	cfg.BookstoreURL = "http://127.0.0.1:3701"
	cfg.IdentityDatabasePath = ":memory:"
	cfg.IdentityURL = "http://127.0.0.1:3703"
	cfg.JWTSecret = "test-secret"
	cfg.LibraryDatabasePath = ":memory:"
	cfg.LibraryURL = "http://127.0.0.1:3702"
	cfg.ServerHost = "127.0.0.1"
}
