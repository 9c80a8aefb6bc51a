// Package archive exports a loaded dataset snapshot to SQLite so
// moderators can run ad-hoc SQL over it. The export is a copy; runtime
// status changes are never written back to the dataset file.
package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/modq-io/modq/internal/dataset"
	"github.com/modq-io/modq/pkg/protocol"
)

const schema = `
	CREATE TABLE IF NOT EXISTS messages (
		id                  TEXT PRIMARY KEY,
		channel_id          TEXT NOT NULL,
		parent_channel_id   TEXT,
		community_server_id TEXT NOT NULL,
		timestamp           TEXT NOT NULL,
		has_attachment      INTEGER NOT NULL,
		reference_msg_id    TEXT,
		timestamp_insert    TEXT NOT NULL,
		discussion_id       TEXT,
		content             TEXT NOT NULL,
		msg_url             TEXT NOT NULL,
		author_id           TEXT NOT NULL,
		author_name         TEXT NOT NULL,
		author_is_bot       INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tickets (
		id                    TEXT PRIMARY KEY,
		msg_id                TEXT NOT NULL REFERENCES messages(id),
		status                TEXT NOT NULL,
		resolved_by           TEXT,
		ts_last_status_change TEXT,
		timestamp             TEXT NOT NULL,
		context_messages      TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);
	CREATE INDEX IF NOT EXISTS idx_messages_author ON messages(author_name);
`

// Export writes the dataset to a SQLite database at path.
func Export(path string, data *dataset.Data) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("archive: migrate: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("archive: begin: %w", err)
	}
	defer tx.Rollback()

	for _, msg := range data.Messages {
		if err := insertMessage(tx, msg); err != nil {
			return err
		}
	}
	for _, id := range data.TicketOrder {
		if err := insertTicket(tx, data.Tickets[id]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive: commit: %w", err)
	}
	return nil
}

func insertMessage(tx *sql.Tx, m *protocol.Message) error {
	_, err := tx.Exec(`
		INSERT INTO messages (id, channel_id, parent_channel_id, community_server_id,
			timestamp, has_attachment, reference_msg_id, timestamp_insert,
			discussion_id, content, msg_url, author_id, author_name, author_is_bot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, m.ID, m.ChannelID, m.ParentChannelID, m.CommunityServerID,
		m.Timestamp.Format(time.RFC3339), m.HasAttachment, m.ReferenceMsgID,
		m.TimestampInsert.Format(time.RFC3339), m.DiscussionID, m.Content,
		m.MsgURL, m.Author.ID, m.Author.Name, m.Author.IsBot)
	if err != nil {
		return fmt.Errorf("archive: insert message %q: %w", m.ID, err)
	}
	return nil
}

func insertTicket(tx *sql.Tx, t *protocol.Ticket) error {
	context, _ := json.Marshal(t.ContextMessages)
	var lastChange *string
	if t.TsLastStatusChange != nil {
		v := t.TsLastStatusChange.Format(time.RFC3339)
		lastChange = &v
	}

	_, err := tx.Exec(`
		INSERT INTO tickets (id, msg_id, status, resolved_by, ts_last_status_change,
			timestamp, context_messages)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, t.ID, t.MsgID, string(t.Status), t.ResolvedBy, lastChange,
		t.Timestamp.Format(time.RFC3339), string(context))
	if err != nil {
		return fmt.Errorf("archive: insert ticket %q: %w", t.ID, err)
	}
	return nil
}
