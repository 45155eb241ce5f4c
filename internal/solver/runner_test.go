package solver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alessandroavenali/fuel-logistics-go/internal/solver"
)

func testInput() *solver.Input {
	return &solver.Input{
		StartDate:          "2025-03-03",
		EndDate:            "2025-03-03",
		ParkingDrivers:     []int{2},
		DestinationDrivers: []int{1},
		InitialState:       solver.InitialState{FullTrailers: 2, EmptyTanks: 2},
		LitersPerUnit:      17500,
		TotalTrailers:      4,
		TotalTractors:      3,
		ShiftMinutes:       720,
		SlotMinutes:        15,
		TimeLimitSeconds:   5,
	}
}

func shRunner(t *testing.T, script string) *solver.Runner {
	t.Helper()
	runner, err := solver.NewRunner([]string{"sh", "-c", script}, nil)
	require.NoError(t, err)
	return runner
}

const feasibleDoc = `{"status":"FEASIBLE","objective_deliveries":1,"objective_liters":17500,"days":[]}`

func TestRunner_ParsesSingleDocument(t *testing.T) {
	runner := shRunner(t, `read -r _; echo '`+feasibleDoc+`'`)

	res, err := runner.Solve(context.Background(), testInput(), solver.SolveOptions{})
	require.NoError(t, err)
	require.NotNil(t, res.Output)
	assert.Equal(t, solver.StatusFeasible, res.Output.Status)
	assert.Equal(t, 17500, res.Output.ObjectiveLiters)
	assert.Empty(t, res.Warnings)
}

func TestRunner_StreamsProgress(t *testing.T) {
	script := `read -r _
echo '{"solutions":1,"objective_deliveries":1,"objective_liters":17500,"elapsed_seconds":0.5}' >&2
echo '` + feasibleDoc + `'`
	runner := shRunner(t, script)

	var seen []solver.Progress
	res, err := runner.Solve(context.Background(), testInput(), solver.SolveOptions{
		OnProgress: func(p solver.Progress) { seen = append(seen, p) },
	})
	require.NoError(t, err)
	require.NotNil(t, res.Output)
	require.NotEmpty(t, seen)
	assert.Equal(t, 17500, seen[0].ObjectiveLiters)
}

func TestRunner_CooperativeStop(t *testing.T) {
	// The child returns its best-known plan once STOP arrives
	script := `read -r _
read -r stopline
if [ "$stopline" = "STOP" ]; then echo '` + feasibleDoc + `'; fi`
	runner := shRunner(t, script)

	stop := make(chan struct{})
	close(stop)

	res, err := runner.Solve(context.Background(), testInput(), solver.SolveOptions{Stop: stop})
	require.NoError(t, err)
	require.NotNil(t, res.Output)
	assert.Equal(t, solver.StatusFeasible, res.Output.Status)
}

func TestRunner_NonZeroExitBecomesWarning(t *testing.T) {
	runner := shRunner(t, `read -r _; echo "model exploded" >&2; exit 3`)

	res, err := runner.Solve(context.Background(), testInput(), solver.SolveOptions{})
	require.NoError(t, err)
	assert.Nil(t, res.Output)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "model exploded")
}

func TestRunner_RejectsMultipleDocuments(t *testing.T) {
	runner := shRunner(t, `read -r _; echo '`+feasibleDoc+` {"extra":1}'`)

	_, err := runner.Solve(context.Background(), testInput(), solver.SolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one JSON document")
}

func TestRunner_RejectsExcessiveTimeLimit(t *testing.T) {
	runner := shRunner(t, `read -r _; echo '`+feasibleDoc+`'`)

	in := testInput()
	in.TimeLimitSeconds = solver.MaxTimeLimitSeconds + 1
	_, err := runner.Solve(context.Background(), in, solver.SolveOptions{})
	assert.Error(t, err)
}

func TestRunner_RequiresCommand(t *testing.T) {
	_, err := solver.NewRunner(nil, nil)
	assert.Error(t, err)
}

func TestInput_Validate(t *testing.T) {
	in := testInput()
	require.NoError(t, in.Validate())

	bad := testInput()
	bad.DestinationDrivers = []int{}
	assert.Error(t, bad.Validate())

	bad = testInput()
	bad.SlotMinutes = 13
	assert.Error(t, bad.Validate())

	bad = testInput()
	bad.TimeLimitSeconds = 0
	assert.Error(t, bad.Validate())
}

func TestOutput_ValidateChainsDayBalances(t *testing.T) {
	out := &solver.Output{
		Status: solver.StatusFeasible,
		Days: []solver.Day{
			{
				FullTrailersStart: 2, EmptyTanksStart: 2,
				FullTrailersEnd: 1, EmptyTrailersEnd: 1, EmptyTanksEnd: 2,
			},
			{
				FullTrailersStart: 1, EmptyTrailersStart: 1, EmptyTanksStart: 2,
			},
		},
	}
	initial := solver.InitialState{FullTrailers: 2, EmptyTanks: 2}
	require.NoError(t, out.Validate(initial))

	out.Days[1].FullTrailersStart = 2
	assert.Error(t, out.Validate(initial))
}
