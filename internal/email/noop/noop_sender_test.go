package noop_test

import (
	"bytes"
	"context"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"notaria/internal/domain"
	"notaria/internal/email/noop"
)

func TestNoopNotifier_LogsCaseLink(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	n := noop.NewNoopNotifier("http://localhost:3000")
	c := &domain.Case{ID: uuid.New(), Status: domain.CaseStatusReviewing, ContactEmail: "cliente@example.com"}

	assert.NoError(t, n.NotifyCaseStatus(context.Background(), c))
	assert.Contains(t, buf.String(), "http://localhost:3000/cases/"+c.ID.String())
	assert.Contains(t, buf.String(), "cliente@example.com")
}

func TestNoopNotifier_SkipsUnannouncedStatus(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	n := noop.NewNoopNotifier("http://localhost:3000")
	assert.NoError(t, n.NotifyCaseStatus(context.Background(), &domain.Case{ID: uuid.New(), Status: domain.CaseStatusExtracting}))
	assert.Empty(t, buf.String())
}
