package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginAttempt_FormattingHidesPassword(t *testing.T) {
	a := LoginAttempt{Email: "a@b.com", Password: "hunter2"}

	for _, out := range []string{a.String(), fmt.Sprint(a), fmt.Sprintf("%v", a), fmt.Sprintf("%#v", a)} {
		assert.Contains(t, out, "a@b.com")
		assert.NotContains(t, out, "hunter2")
	}
}
