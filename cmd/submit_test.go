package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicedesk/config"
	"servicedesk/intake"
	"servicedesk/servicerequest"
	"servicedesk/sheet"
)

type recordingGateway struct {
	values [][]string
}

func (g *recordingGateway) ReadAll(context.Context) (sheet.Table, error) {
	return sheet.NewTable(g.values), nil
}

func (g *recordingGateway) AppendRow(_ context.Context, row []string) error {
	g.values = append(g.values, row)
	return nil
}

func TestRunSubmit_DefaultsDateAndTechnician(t *testing.T) {
	t.Parallel()

	gateway := &recordingGateway{values: [][]string{servicerequest.Headers, make([]string, len(servicerequest.Headers))}}
	service := intake.NewService(gateway, config.DefaultsConfig{Priority: "Medium", Technician: "Abhishek", Status: "CLOSED"})

	record, err := runSubmit(context.Background(), service, intake.Form{
		StartTime:     "09:10",
		EndTime:       "09:42",
		UserName:      "ravi",
		IssueCategory: "hardware",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, 2, record.SlNo)
	assert.Equal(t, "Abhishek", record.Technician)
	assert.Equal(t, "00:32", record.EffortTime)
	assert.Equal(t, time.Now().Format("02/01/2006"), record.CreatedDate)
	require.Len(t, gateway.values, 3)
}

func TestRunSubmit_ReturnsValidationError(t *testing.T) {
	t.Parallel()

	gateway := &recordingGateway{}
	service := intake.NewService(gateway, config.DefaultsConfig{Priority: "Medium", Technician: "Abhishek", Status: "CLOSED"})

	_, err := runSubmit(context.Background(), service, intake.Form{StartTime: "9am", EndTime: "10:00", UserName: "ravi", IssueCategory: "x"}, "")
	var validationErr *intake.ValidationError
	require.True(t, errors.As(err, &validationErr), "expected validation error, got %v", err)
	assert.Contains(t, validationErr.Fields, "start_time")
	assert.Empty(t, gateway.values)
}
