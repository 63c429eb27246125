// Package contextreport builds the context-state payload the context
// manager aggregates into outbound requests, and republishes it on the
// PLAYING/FINISHED refresh policy described by the capability contract.
package contextreport

import (
	"context"
	"encoding/json"

	"github.com/skaggar/speechsynthesizer/runtime/contracts"
	"github.com/skaggar/speechsynthesizer/runtime/events"
	"github.com/skaggar/speechsynthesizer/runtime/playback"
)

// OffsetSource reports the current playback offset, satisfied by
// contracts.MediaPlayer.
type OffsetSource interface {
	OffsetMilliseconds() int64
}

// Provider builds and publishes context-state reports for a single
// capability namespace/name pair.
type Provider struct {
	namespace string
	name      string
	publisher contracts.ContextPublisher
}

// NewProvider returns a Provider that publishes under namespace/name.
func NewProvider(namespace, name string, publisher contracts.ContextPublisher) *Provider {
	return &Provider{namespace: namespace, name: name, publisher: publisher}
}

// Build constructs the wire payload for the given token, current state, and
// offset source. offset may be nil, in which case offsetInMilliseconds is
// reported as zero (e.g. no current record).
func (p *Provider) Build(token string, state playback.State, offset OffsetSource) ([]byte, error) {
	var ms int64
	if offset != nil {
		ms = offset.OffsetMilliseconds()
	}
	payload := events.ContextStatePayload{
		Token:                token,
		OffsetInMilliseconds: ms,
		PlayerActivity:       state.ContextActivity(),
	}
	return json.Marshal(payload)
}

// Publish builds the context payload and sends it to the configured
// publisher. Called both on demand (provideState) and, per the refresh
// policy, on every PLAYING and FINISHED transition without being asked.
func (p *Provider) Publish(ctx context.Context, token string, state playback.State, offset OffsetSource) error {
	payload, err := p.Build(token, state, offset)
	if err != nil {
		return err
	}
	if p.publisher == nil {
		return nil
	}
	return p.publisher.PublishContext(ctx, p.namespace, p.name, payload)
}

// ShouldRefresh reports whether state is one of the two transitions that
// trigger an unsolicited context publish (spec §4.6).
func ShouldRefresh(state playback.State) bool {
	return state == playback.Playing || state == playback.Finished
}
