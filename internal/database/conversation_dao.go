package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/taskmind/taskmind/internal/llm"
	"github.com/taskmind/taskmind/internal/types"
)

// ConversationDAO persists per-user chat history. Messages are stored in
// insertion order; tool calls ride along as a JSON column so that a reloaded
// history replays identically, tool turns included.
type ConversationDAO struct {
	db *DB
}

// NewConversationDAO creates a new ConversationDAO.
func NewConversationDAO(db *DB) *ConversationDAO {
	return &ConversationDAO{db: db}
}

// Append stores messages at the end of the user's conversation history.
// All messages are written in a single transaction.
func (d *ConversationDAO) Append(ctx context.Context, userID types.ID, messages []llm.Message) error {
	if len(messages) == 0 {
		return nil
	}

	now := time.Now().UTC()

	return d.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO conversation_messages (user_id, role, content, name, tool_calls, tool_call_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return types.WrapError(types.CONVERSATION_SAVE_FAILED, "failed to prepare insert", err)
		}
		defer stmt.Close()

		for _, msg := range messages {
			var toolCalls any
			if len(msg.ToolCalls) > 0 {
				encoded, err := json.Marshal(msg.ToolCalls)
				if err != nil {
					return types.WrapError(types.CONVERSATION_SAVE_FAILED, "failed to encode tool calls", err)
				}
				toolCalls = string(encoded)
			}

			_, err = stmt.ExecContext(ctx,
				userID.String(), msg.Role.String(), msg.Content, msg.Name, toolCalls, msg.ToolCallID, now)
			if err != nil {
				return types.WrapError(types.CONVERSATION_SAVE_FAILED, "failed to save message", err)
			}
		}

		return nil
	})
}

// Load retrieves the most recent limit messages of the user's conversation
// in chronological order. A limit of zero or less loads the full history.
func (d *ConversationDAO) Load(ctx context.Context, userID types.ID, limit int) ([]llm.Message, error) {
	query := `
		SELECT role, content, name, tool_calls, tool_call_id
		FROM conversation_messages
		WHERE user_id = ?
		ORDER BY id DESC`
	args := []any{userID.String()}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.WrapError(types.CONVERSATION_LOAD_FAILED, "failed to load conversation", err)
	}
	defer rows.Close()

	var messages []llm.Message
	for rows.Next() {
		var (
			msg       llm.Message
			role      string
			toolCalls sql.NullString
		)

		if err := rows.Scan(&role, &msg.Content, &msg.Name, &toolCalls, &msg.ToolCallID); err != nil {
			return nil, types.WrapError(types.CONVERSATION_LOAD_FAILED, "failed to scan message", err)
		}

		msg.Role = llm.Role(role)
		if toolCalls.Valid && toolCalls.String != "" {
			if err := json.Unmarshal([]byte(toolCalls.String), &msg.ToolCalls); err != nil {
				return nil, types.WrapError(types.CONVERSATION_LOAD_FAILED, "failed to decode tool calls", err)
			}
		}

		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.CONVERSATION_LOAD_FAILED, "failed to load conversation", err)
	}

	// Rows were read newest-first; reverse into chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return trimOrphanToolMessages(messages), nil
}

// trimOrphanToolMessages drops leading tool messages left over when the
// limit cuts the window inside a tool exchange. A tool message whose
// pairing assistant tool_calls turn fell outside the window makes the
// whole prompt invalid, so the history must start on a clean boundary.
func trimOrphanToolMessages(messages []llm.Message) []llm.Message {
	start := 0
	for start < len(messages) && messages[start].Role == llm.RoleTool {
		start++
	}
	return messages[start:]
}

// Clear deletes the user's entire conversation history.
func (d *ConversationDAO) Clear(ctx context.Context, userID types.ID) error {
	_, err := d.db.conn.ExecContext(ctx,
		"DELETE FROM conversation_messages WHERE user_id = ?", userID.String())
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to clear conversation", err)
	}
	return nil
}
