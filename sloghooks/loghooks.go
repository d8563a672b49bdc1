package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/kvcell"
	"github.com/unkn0wn-root/kvcell/internal/util"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery uint64
	DroppedEvery  uint64
	// LogEchoes also logs dropped own echoes, one per local write on a bus.
	LogEchoes bool
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr atomic.Uint64
	droppedCtr  atomic.Uint64
}

var _ kvcell.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return util.Redact(k)
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Warn("kvcell.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("kvcell.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) ChangeDropped(storageKey, reason string) {
	if h.l == nil || (reason == "echo" && !h.opts.LogEchoes) {
		return
	}
	if !sample(h.opts.DroppedEvery, &h.droppedCtr) {
		return
	}
	h.l.Debug("kvcell.change_dropped",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) RevError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("kvcell.rev_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) PublishError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("kvcell.publish_error",
		"key", h.redact(storageKey),
		"err", err)
}
