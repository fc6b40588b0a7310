package helpers

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shelfbot/core/logger"
)

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var err error
	if len(opts) > 0 && opts[0] != nil {
		err = c.Send(text, opts[0])
	} else {
		err = c.Send(text)
	}
	if err != nil {
		logger.Warn(BuildContext(c), "tg.send", "send.text",
			slog.String("status", "fail"),
			slog.String("err", logger.Sanitize(err.Error())),
		)
	}
	return err
}

// SendMD sends a message with Markdown parse mode and optional reply markup.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	return SendText(c, text, &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: rm})
}
