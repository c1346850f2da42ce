package postgres

import "embed"

// MigrationsDir is the directory inside Migrations that holds the goose files.
const MigrationsDir = "migrations"

// MigrationsTable records applied schema versions.
const MigrationsTable = "schema_migrations"

// Migrations holds the SQL schema migrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS
