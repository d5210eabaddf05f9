// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/panelkit/pkg/uuid"
)

func TestNewIsTimeOrdered(t *testing.T) {
	before := time.Now().UnixMilli()
	id := uuid.New()

	assert.True(t, uuid.IsValid(id))
	millis, ok := uuid.Timestamp(id)
	assert.True(t, ok)
	assert.InDelta(t, before, millis, 1000)
}

func TestIsValid(t *testing.T) {
	assert.True(t, uuid.IsValid("0190a6b2-7c1e-7abc-8def-0123456789ab"))
	assert.True(t, uuid.IsValid("0190A6B2-7C1E-7ABC-8DEF-0123456789AB"))
	assert.False(t, uuid.IsValid("0190a6b27c1e7abc8def0123456789ab"))
	assert.False(t, uuid.IsValid("not-a-uuid"))
}

func TestTimestampRejectsOtherVersions(t *testing.T) {
	_, ok := uuid.Timestamp("9b2c6f1e-4d3a-4f5b-8c7d-112233445566")
	assert.False(t, ok)
}
