package contacts

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImportCSV_CountsPerRowOutcomes(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	in := strings.Join([]string{
		"phone_number,first_name,city",
		"+14155552671,Jane,Oakland",
		"+14155552672,Tom,",
		"+14155552671,Jane,Oakland", // duplicate of row 1
		"not-a-phone,Bob,Reno",      // invalid
		"+14155552673",              // ragged row, phone only
	}, "\n")

	res, err := svc.ImportCSV(ctx, "camp-1", strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, ImportResult{Accepted: 3, Duplicates: 1, Invalid: 1}, res)

	list, err := svc.List(ctx, "camp-1", "")
	require.NoError(t, err)
	require.Len(t, list, 3)

	byPhone := map[string]Contact{}
	for _, c := range list {
		require.Equal(t, CallStatusPending, c.CallStatus)
		byPhone[c.Phone] = c
	}
	require.Equal(t, "Jane", byPhone["+14155552671"].DynamicVariables["first_name"])
	require.Equal(t, "Oakland", byPhone["+14155552671"].DynamicVariables["city"])
	require.Empty(t, byPhone["+14155552673"].DynamicVariables)
}

func TestImportCSV_RequiresPhoneColumn(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	_, err := svc.ImportCSV(context.Background(), "camp-1", strings.NewReader("name,city\nJane,Oakland\n"))
	require.ErrorIs(t, err, ErrMissingPhoneColumn)

	_, err = svc.ImportCSV(context.Background(), "camp-1", strings.NewReader(""))
	require.ErrorIs(t, err, ErrMissingPhoneColumn)
}

func TestCSVTemplateRoundTrips(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	res, err := svc.ImportCSV(context.Background(), "camp-1", strings.NewReader(CSVTemplate))
	require.NoError(t, err)
	require.Equal(t, 1, res.Accepted)
}
