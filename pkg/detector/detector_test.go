package detector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/query-inspector/pkg/types"
)

func TestEventLevelByDetectorLevel(t *testing.T) {
	tests := []struct {
		level   types.DetectorLevel
		want    types.EventLevel
		wantErr bool
	}{
		{level: types.DetectorLevel_INFO, want: types.EventLevel_INFO},
		{level: types.DetectorLevel_WARNING, want: types.EventLevel_WARNING},
		{level: types.DetectorLevel_TIP, want: types.EventLevel_TIP},
		{level: types.DetectorLevel_SUGGESTION, want: types.EventLevel_SUGGESTION},
		{level: types.DetectorLevel_ERROR, want: types.EventLevel_ERROR},
		{level: types.DetectorLevel_DISABLED, wantErr: true},
		{level: types.DetectorLevel_LEVEL_UNSPECIFIED, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			got, err := EventLevelByDetectorLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type stubDetector struct {
	findings []*types.Finding
}

func (d *stubDetector) Check(_ context.Context, _ Context) ([]*types.Finding, error) {
	return d.findings, nil
}

type panicDetector struct{}

func (*panicDetector) Check(_ context.Context, _ Context) ([]*types.Finding, error) {
	panic("boom")
}

func TestRegisterAndCheck(t *testing.T) {
	fixture := types.FindingType("registry fixture")
	want := []*types.Finding{{Type: fixture, Query: "SELECT 1"}}
	Register(fixture, &stubDetector{findings: want})

	got, err := Check(context.Background(), fixture, Context{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCheckUnknownDetector(t *testing.T) {
	_, err := Check(context.Background(), types.FindingType("never registered"), Context{})
	assert.Error(t, err)
}

func TestRegisterNilPanics(t *testing.T) {
	assert.Panics(t, func() {
		Register(types.FindingType("nil fixture"), nil)
	})
}

func TestRegisterDuplicatePanics(t *testing.T) {
	fixture := types.FindingType("duplicate fixture")
	Register(fixture, &stubDetector{})
	assert.Panics(t, func() {
		Register(fixture, &stubDetector{})
	})
}

func TestCheckRecoversFromPanic(t *testing.T) {
	fixture := types.FindingType("panic fixture")
	Register(fixture, &panicDetector{})

	findings, err := Check(context.Background(), fixture, Context{})
	assert.Error(t, err)
	assert.Nil(t, findings)
}
