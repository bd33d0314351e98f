// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

package token

import "time"

// SetClock overrides the codec's time source so tests can place issuance
// and validation at exact instants.
func (c *Codec) SetClock(now func() time.Time) {
	c.now = now
}
