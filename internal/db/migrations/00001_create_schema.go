package migrations

// Column types differ per driver (TIMESTAMPTZ on PostgreSQL, DATETIME(6) and
// VARCHAR keys on MySQL), so the schema lives in a Go migration.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSchema, downCreateSchema)
}

var schemaTables = []struct {
	name string
	ddl  string
}{
	{"instance_info", `CREATE TABLE IF NOT EXISTS instance_info (
    id            {id} PRIMARY KEY,
    hostname      {text} NOT NULL,
    instance_name {text} NOT NULL,
    smtp_server   {text} NOT NULL,
    smtp_username {text} NOT NULL,
    smtp_pass     {text} NOT NULL,
    created_at    {time} NOT NULL,
    updated_at    {time} NOT NULL
)`},
	{"users", `CREATE TABLE IF NOT EXISTS users (
    id            {id} PRIMARY KEY,
    username      {short} NOT NULL UNIQUE,
    display_name  {text} NOT NULL,
    email         {text} NOT NULL,
    password_hash {text} NOT NULL,
    picture_url   {text} NOT NULL,
    is_admin      {bool} NOT NULL DEFAULT FALSE,
    is_verified   {bool} NOT NULL DEFAULT FALSE,
    created_at    {time} NOT NULL,
    updated_at    {time} NOT NULL
)`},
	{"api_tokens", `CREATE TABLE IF NOT EXISTS api_tokens (
    id           {id} PRIMARY KEY,
    user_id      {id} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    token_hash   {short} NOT NULL UNIQUE,
    created_at   {time} NOT NULL,
    last_used_at {time} NULL
)`},
	{"user_keys", `CREATE TABLE IF NOT EXISTS user_keys (
    id         {id} PRIMARY KEY,
    issuer_id  {id} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    user_key   {short} NOT NULL UNIQUE,
    key_type   {short} NOT NULL,
    username   {short} NOT NULL,
    used       {bool} NOT NULL DEFAULT FALSE,
    created_at {time} NOT NULL
)`},
	{"posts", `CREATE TABLE IF NOT EXISTS posts (
    id           {id} PRIMARY KEY,
    user_id      {id} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    content_type {short} NOT NULL,
    content_text {text} NOT NULL,
    created_at   {time} NOT NULL,
    updated_at   {time} NOT NULL
)`},
	{"content_fields", `CREATE TABLE IF NOT EXISTS content_fields (
    id          {id} PRIMARY KEY,
    post_id     {id} NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    field_key   {text} NOT NULL,
    field_value {text} NOT NULL,
    created_at  {time} NOT NULL
)`},
	{"files", `CREATE TABLE IF NOT EXISTS files (
    id           {id} PRIMARY KEY,
    user_id      {id} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    file_name    {short} NOT NULL UNIQUE,
    storage_key  {text} NOT NULL,
    content_type {text} NOT NULL,
    size_bytes   {bigint} NOT NULL,
    created_at   {time} NOT NULL
)`},
	{"email_tokens", `CREATE TABLE IF NOT EXISTS email_tokens (
    id         {id} PRIMARY KEY,
    user_id    {id} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    token_hash {short} NOT NULL UNIQUE,
    email      {text} NOT NULL,
    created_at {time} NOT NULL
)`},
}

// MySQL indexes foreign keys on its own and lacks CREATE INDEX IF NOT EXISTS.
var schemaIndexes = []string{
	`CREATE INDEX IF NOT EXISTS api_tokens_user_idx ON api_tokens (user_id)`,
	`CREATE INDEX IF NOT EXISTS user_keys_issuer_idx ON user_keys (issuer_id)`,
	`CREATE INDEX IF NOT EXISTS posts_user_idx ON posts (user_id)`,
	`CREATE INDEX IF NOT EXISTS content_fields_post_idx ON content_fields (post_id)`,
	`CREATE INDEX IF NOT EXISTS files_user_idx ON files (user_id)`,
	`CREATE INDEX IF NOT EXISTS email_tokens_user_idx ON email_tokens (user_id)`,
}

func upCreateSchema(ctx context.Context, tx *sql.Tx) error {
	t := typesFor(dialect)
	r := strings.NewReplacer(
		"{id}", t.ID,
		"{short}", t.Short,
		"{text}", t.Text,
		"{bool}", t.Bool,
		"{time}", t.Time,
		"{bigint}", t.BigInt,
	)
	for _, tbl := range schemaTables {
		if _, err := tx.ExecContext(ctx, r.Replace(tbl.ddl)); err != nil {
			return fmt.Errorf("create %s table: %w", tbl.name, err)
		}
	}
	if dialect == "mysql" {
		return nil
	}
	for _, idx := range schemaIndexes {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func downCreateSchema(ctx context.Context, tx *sql.Tx) error {
	for i := len(schemaTables) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+schemaTables[i].name); err != nil {
			return fmt.Errorf("drop %s table: %w", schemaTables[i].name, err)
		}
	}
	return nil
}
