// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package provider

// Hook names accepted by RegisterHook.
const (
	// HookUpdated fires after Update commits a revision. The argument is
	// the new revision as uint64.
	HookUpdated = "updated"

	// HookSessionCreated fires after a session is allocated. The argument
	// is the *Session.
	HookSessionCreated = "session_created"

	// HookSessionDestroyed fires after a session is removed. The argument
	// is the *Session.
	HookSessionDestroyed = "session_destroyed"
)

// HookFunc is one registered callback. A non-nil error stops the chain and
// propagates to the operation that fired it.
type HookFunc func(arg any) error

// RegisterHook appends fn to the named hook chain. Invocation order is
// registration order.
func (p *Provider) RegisterHook(name string, fn HookFunc) error {
	switch name {
	case HookUpdated, HookSessionCreated, HookSessionDestroyed:
	default:
		return ErrUnknownHook
	}

	p.mu.Lock()
	p.hooks[name] = append(p.hooks[name], fn)
	p.mu.Unlock()
	return nil
}

// fireHooks runs the named chain in registration order. The first failing
// hook disrupts the chain; later hooks do not run.
func (p *Provider) fireHooks(name string, arg any) error {
	p.mu.Lock()
	chain := p.hooks[name]
	p.mu.Unlock()

	for _, fn := range chain {
		if err := fn(arg); err != nil {
			return err
		}
	}
	return nil
}
