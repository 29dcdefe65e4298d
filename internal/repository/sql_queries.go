package repository

const createBotUsersSQL = `
CREATE TABLE IF NOT EXISTS bot_users (
    telegram_id      BIGINT PRIMARY KEY,
    username         TEXT NOT NULL DEFAULT '',
    language         VARCHAR(8) NOT NULL DEFAULT 'en',
    database_context TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const registerUserSQL = `
INSERT INTO bot_users (telegram_id, username, language)
VALUES ($1, $2, $3)
ON CONFLICT (telegram_id) DO NOTHING
`

const userExistsSQL = "SELECT EXISTS (SELECT 1 FROM bot_users WHERE telegram_id = $1)"

const getLanguageSQL = "SELECT language FROM bot_users WHERE telegram_id = $1"

const setLanguageSQL = "UPDATE bot_users SET language = $2 WHERE telegram_id = $1"

const getDatabaseSQL = "SELECT database_context FROM bot_users WHERE telegram_id = $1"

const setDatabaseSQL = "UPDATE bot_users SET database_context = $2 WHERE telegram_id = $1"

const deleteUserSQL = "DELETE FROM bot_users WHERE telegram_id = $1"
