package notify_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/notify"
	"taskdeck/internal/testutil"
)

func TestTaskCreatedPayload(t *testing.T) {
	svc := testutil.NewFakeService()
	d := notify.NewDispatcher(svc, nil)

	d.TaskCreated("a@x.com", "Buy milk", "2%")
	d.Wait()

	require.Equal(t, 1, svc.InvocationCount())
	inv := svc.Invocations[0]
	assert.Equal(t, notify.FunctionName, inv.Name)

	data, err := json.Marshal(inv.Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"to": ["a@x.com"],
		"subject": "New Task Added: Buy milk",
		"description": "2%"
	}`, string(data))
}

func TestInvokeFailureIsSwallowed(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.InvokeErr = errors.New("function unreachable")
	d := notify.NewDispatcher(svc, nil)

	// Must not propagate anywhere; the task itself already succeeded.
	d.TaskCreated("a@x.com", "Buy milk", "2%")
	d.Wait()

	assert.Equal(t, 0, svc.InvocationCount())
}

func TestWaitDrainsAllDispatches(t *testing.T) {
	svc := testutil.NewFakeService()
	d := notify.NewDispatcher(svc, nil)

	for i := 0; i < 5; i++ {
		d.TaskCreated("a@x.com", "task", "d")
	}
	d.Wait()

	assert.Equal(t, 5, svc.InvocationCount())
}
