package telegram

import (
	"strconv"
	"unicode/utf16"

	"github.com/sandevgo/snipbot/internal/core"
	tele "gopkg.in/telebot.v3"
)

const fence = "```"

// toMessage maps a Telegram update to the platform-neutral message.
func toMessage(m *tele.Message) core.Message {
	msg := core.Message{
		ID: strconv.Itoa(m.ID),
	}
	if m.Chat != nil {
		msg.ChannelID = m.Chat.ID
	}
	if m.Sender != nil {
		msg.AuthorID = m.Sender.ID
		msg.AuthorIsBot = m.Sender.IsBot
	}

	text, entities := m.Text, m.Entities
	if text == "" {
		text, entities = m.Caption, m.CaptionEntities
	}
	msg.Content = restoreFence(text, entities)

	if m.Document != nil {
		msg.Attachments = append(msg.Attachments, core.Attachment{
			FileID:   m.Document.FileID,
			Filename: m.Document.FileName,
			Size:     int64(m.Document.FileSize),
		})
	}
	return msg
}

// restoreFence puts back the fence Telegram strips from a message sent as a
// single pre block. Partial pre entities are left alone.
func restoreFence(text string, entities tele.Entities) string {
	if text == "" {
		return text
	}
	length := len(utf16.Encode([]rune(text)))

	for _, e := range entities {
		if e.Type != tele.EntityCodeBlock {
			continue
		}
		if e.Offset == 0 && e.Length == length {
			return fence + e.Language + "\n" + text + "\n" + fence
		}
	}
	return text
}

func sessionKey(c tele.Context) core.SessionKey {
	var key core.SessionKey
	if chat := c.Chat(); chat != nil {
		key.ChannelID = chat.ID
	}
	if sender := c.Sender(); sender != nil {
		key.AuthorID = sender.ID
	}
	return key
}
