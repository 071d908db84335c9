// Package slack posts casting notifications to a single Slack channel.
package slack

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"casting_ops_backend/platform/config"
	"casting_ops_backend/platform/logger"

	slackapi "github.com/slack-go/slack"
)

// ErrShareUnresolved reports a file that was uploaded and shared but whose
// message timestamp could not be read back.
var ErrShareUnresolved = errors.New("slack uploadFile: shared message timestamp not found")

// File is an attachment uploaded alongside a message.
type File struct {
	Name    string
	Content []byte
}

// Message is one notification, optionally threaded and optionally carrying a file.
type Message struct {
	Text     string
	ThreadTS string
	File     *File
}

// Result identifies the posted message.
type Result struct {
	TS        string
	Permalink string
}

type Client struct {
	api       *slackapi.Client
	channel   string
	mentionID string
	log       *logger.Logger
	shareWait time.Duration
}

// NewClient returns nil when the bot token or channel is not configured.
func NewClient(cfg config.SlackConfig, log *logger.Logger, opts ...slackapi.Option) *Client {
	if !cfg.IsSlackEnabled() {
		return nil
	}
	return &Client{
		api:       slackapi.New(cfg.GetSlackBotToken(), opts...),
		channel:   cfg.GetSlackChannelID(),
		mentionID: cfg.GetSlackMentionGroupID(),
		log:       log,
		shareWait: 2 * time.Second,
	}
}

// MentionGroupID is the user group pinged on new orders, if any.
func (c *Client) MentionGroupID() string {
	if c == nil {
		return ""
	}
	return c.mentionID
}

// PostMessage posts mrkdwn text, replying into threadTS when it is set.
func (c *Client) PostMessage(ctx context.Context, text, threadTS string) (string, error) {
	if c == nil {
		return "", nil
	}

	opts := []slackapi.MsgOption{slackapi.MsgOptionText(text, false)}
	if threadTS != "" {
		opts = append(opts, slackapi.MsgOptionTS(threadTS))
	}

	_, ts, err := c.api.PostMessageContext(ctx, c.channel, opts...)
	if err != nil {
		return "", fmt.Errorf("slack postMessage: %w", err)
	}
	return ts, nil
}

// Permalink resolves the web link of a posted message.
func (c *Client) Permalink(ctx context.Context, ts string) (string, error) {
	if c == nil || ts == "" {
		return "", nil
	}
	link, err := c.api.GetPermalinkContext(ctx, &slackapi.PermalinkParameters{Channel: c.channel, Ts: ts})
	if err != nil {
		return "", fmt.Errorf("slack getPermalink: %w", err)
	}
	return link, nil
}

// UploadFile shares a file with comment as its message and returns that
// message's timestamp. Slack does not return it directly, so it is read from
// the file's share list, polling files.info once if the share is not visible yet.
// Once the upload succeeded every later failure wraps ErrShareUnresolved.
func (c *Client) UploadFile(ctx context.Context, f File, comment, threadTS string) (string, error) {
	if c == nil {
		return "", nil
	}

	summary, err := c.api.UploadFileV2Context(ctx, slackapi.UploadFileV2Parameters{
		Reader:          bytes.NewReader(f.Content),
		FileSize:        len(f.Content),
		Filename:        f.Name,
		Title:           f.Name,
		InitialComment:  comment,
		Channel:         c.channel,
		ThreadTimestamp: threadTS,
	})
	if err != nil {
		return "", fmt.Errorf("slack uploadFile: %w", err)
	}

	ts, err := c.shareTimestamp(ctx, summary.ID)
	if err == nil && ts == "" && c.shareWait > 0 {
		timer := time.NewTimer(c.shareWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("%w: %w", ErrShareUnresolved, ctx.Err())
		case <-timer.C:
		}
		ts, err = c.shareTimestamp(ctx, summary.ID)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrShareUnresolved, err)
	}
	if ts == "" {
		return "", ErrShareUnresolved
	}
	return ts, nil
}

func (c *Client) shareTimestamp(ctx context.Context, fileID string) (string, error) {
	file, _, _, err := c.api.GetFileInfoContext(ctx, fileID, 0, 0)
	if err != nil {
		return "", fmt.Errorf("slack files.info: %w", err)
	}
	for _, shares := range []map[string][]slackapi.ShareFileInfo{file.Shares.Public, file.Shares.Private} {
		if list, ok := shares[c.channel]; ok && len(list) > 0 && list[0].Ts != "" {
			return list[0].Ts, nil
		}
		for _, list := range shares {
			if len(list) > 0 && list[0].Ts != "" {
				return list[0].Ts, nil
			}
		}
	}
	return "", nil
}

// Dispatch sends msg, uploading its file when present. A failed upload falls
// back to a text-only post. An upload whose timestamp cannot be read back is
// already visible in the channel, so it is not posted again and the result
// carries no timestamp. Permalink failures are logged and leave it empty.
func (c *Client) Dispatch(ctx context.Context, msg Message) (Result, error) {
	if c == nil {
		return Result{}, nil
	}

	var (
		ts  string
		err error
	)
	if msg.File != nil && len(msg.File.Content) > 0 {
		ts, err = c.UploadFile(ctx, *msg.File, msg.Text, msg.ThreadTS)
		if errors.Is(err, ErrShareUnresolved) {
			c.log.Warn("slack upload posted without a readable timestamp", "error", err, "file", msg.File.Name)
			return Result{}, nil
		}
		if err != nil {
			c.log.Warn("slack upload failed, posting text only", "error", err, "file", msg.File.Name)
			ts, err = c.PostMessage(ctx, msg.Text, msg.ThreadTS)
		}
	} else {
		ts, err = c.PostMessage(ctx, msg.Text, msg.ThreadTS)
	}
	if err != nil {
		return Result{}, err
	}

	link, err := c.Permalink(ctx, ts)
	if err != nil {
		c.log.Warn("slack permalink lookup failed", "error", err, "ts", ts)
	}
	return Result{TS: ts, Permalink: link}, nil
}
