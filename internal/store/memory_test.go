// internal/store/memory_test.go
package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-browser/internal/common/logger"
	"sales-browser/internal/sales"
)

const sampleCSV = `transactionId,date,customerId,customerName,phoneNumber,gender,age,customerRegion,productId,productCategory,tags,quantity,totalAmount,paymentMethod,employeeName
T1,2024-03-01,C1,Alice Smith,111222,Female,30,North,P1,Electronics,"vip,loyalty",2,199.98,Card,Eve
T2,2024-03-02,C2,Bob Jones,333444,Male,45,South,P2,Clothing,loyalty,5,75.00,Cash,Frank
T3,2024-03-03,C3,Carol White,555666,Female,not-a-number,North,P3,Clothing,,1,20.00,Card,Eve
`

func TestMemoryStoreLoad(t *testing.T) {
	st := NewMemoryStore(logger.NewTestLogger(t))
	require.NoError(t, st.Load(strings.NewReader(sampleCSV)))

	result, err := st.Query(context.Background(), sales.QueryRequest{
		SortBy:    sales.SortByName,
		SortOrder: sales.OrderAsc,
		Page:      1,
		PageSize:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Data, 3)
	assert.Equal(t, "Alice Smith", result.Data[0].CustomerName)
	assert.Equal(t, "2024-03-01T00:00:00Z", result.Data[0].Date)

	// malformed age degrades to absent rather than dropping the row
	assert.Equal(t, "Carol White", result.Data[2].CustomerName)
	assert.Nil(t, result.Data[2].Age)
}

func TestMemoryStoreLoadStructuralFailure(t *testing.T) {
	st := NewMemoryStore(logger.NewTestLogger(t))

	bad := "transactionId,customerName\nT1,\"unterminated\n"
	err := st.Load(strings.NewReader(bad))
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 2, loadErr.Row)
	assert.Contains(t, err.Error(), "LOAD_FAILED (row 2)")
}

func TestMemoryStoreNotReady(t *testing.T) {
	st := NewMemoryStore(logger.NewTestLogger(t))

	_, err := st.Query(context.Background(), sales.QueryRequest{Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = st.FilterCatalog(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestMemoryStoreFailedReloadKeepsSnapshot(t *testing.T) {
	st := NewMemoryStore(logger.NewTestLogger(t))
	require.NoError(t, st.Load(strings.NewReader(sampleCSV)))

	require.Error(t, st.Load(strings.NewReader("transactionId\nT1,\"broken\n")))

	result, err := st.Query(context.Background(), sales.QueryRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
}

func TestMemoryStoreFilterCatalog(t *testing.T) {
	st := NewMemoryStore(logger.NewTestLogger(t))
	require.NoError(t, st.Load(strings.NewReader(sampleCSV)))

	catalog, err := st.FilterCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South"}, catalog.Regions)
	assert.Equal(t, []string{"Female", "Male"}, catalog.Genders)
	assert.Equal(t, []string{"Clothing", "Electronics"}, catalog.Categories)
	assert.Equal(t, []string{"loyalty", "vip"}, catalog.Tags)
	assert.Equal(t, []string{"Card", "Cash"}, catalog.PaymentMethods)
	require.NotNil(t, catalog.MinAge)
	assert.Equal(t, 30, *catalog.MinAge)
	require.NotNil(t, catalog.MaxAge)
	assert.Equal(t, 45, *catalog.MaxAge)
}

func TestLoadFileMissing(t *testing.T) {
	st := NewMemoryStore(logger.NewTestLogger(t))

	err := st.LoadFile("does-not-exist.csv")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 0, loadErr.Row)
}
