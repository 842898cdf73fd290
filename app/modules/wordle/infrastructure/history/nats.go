// Package wordlehistory provides channel history sources for backfill.
package wordlehistory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"time"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	"github.com/nats-io/nats.go"
)

// Requester sends a request and waits for one reply. *nats.Conn satisfies it.
type Requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// NATSPager walks a channel's history by requesting pages from the chat
// gateway over NATS request/reply.
type NATSPager struct {
	conn      Requester
	subject   string
	channelID string
	pageSize  int
	timeout   time.Duration
}

// Option configures a NATSPager.
type Option func(*NATSPager)

// WithSubject overrides the request subject.
func WithSubject(subject string) Option {
	return func(p *NATSPager) {
		if subject != "" {
			p.subject = subject
		}
	}
}

// WithPageSize sets how many messages to ask for per request.
func WithPageSize(n int) Option {
	return func(p *NATSPager) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

// WithTimeout bounds each page request.
func WithTimeout(d time.Duration) Option {
	return func(p *NATSPager) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewNATSPager creates a pager for channelID.
func NewNATSPager(conn Requester, channelID string, opts ...Option) *NATSPager {
	p := &NATSPager{
		conn:      conn,
		subject:   wordleevents.HistoryRequestV1,
		channelID: channelID,
		pageSize:  100,
		timeout:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Messages yields the channel's messages newest first, one page at a time.
func (p *NATSPager) Messages(ctx context.Context) iter.Seq2[wordledomain.Message, error] {
	return func(yield func(wordledomain.Message, error) bool) {
		before := ""
		for {
			page, err := p.page(ctx, before)
			if err != nil {
				yield(wordledomain.Message{}, err)
				return
			}
			if len(page.Messages) == 0 {
				return
			}
			for _, m := range page.Messages {
				if !yield(ToMessage(m), nil) {
					return
				}
			}
			next := page.Messages[len(page.Messages)-1].MessageID
			if next == "" || next == before {
				return
			}
			before = next
		}
	}
}

func (p *NATSPager) page(ctx context.Context, before string) (*wordleevents.HistoryPageResponseV1, error) {
	body, err := json.Marshal(wordleevents.HistoryPageRequestV1{
		ChannelID: p.channelID,
		Before:    before,
		Limit:     p.pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal history request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg, err := p.conn.RequestWithContext(reqCtx, p.subject, body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("request history page for %s: %w", p.channelID, err)
	}

	var page wordleevents.HistoryPageResponseV1
	if err := json.Unmarshal(msg.Data, &page); err != nil {
		return nil, fmt.Errorf("decode history page: %w", err)
	}
	if page.Error != "" {
		return nil, errors.New("history page: " + page.Error)
	}
	return &page, nil
}

// ToMessage converts a gateway payload to a domain message.
func ToMessage(m wordleevents.MessageReceivedPayloadV1) wordledomain.Message {
	return wordledomain.Message{
		ID:        m.MessageID,
		ChannelID: m.ChannelID,
		AuthorID:  m.AuthorID,
		AuthorBot: m.AuthorBot,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
}
