package service

import (
	"context"
	"math"
	"testing"
	"time"

	"shopledger/internal/model"
	"shopledger/internal/repository"
)

func newForecastFixture(t *testing.T) (*fixture, *ForecastService) {
	t.Helper()
	f := seedShop(t)
	svc := NewForecastService(f.db,
		repository.NewProductRepository(f.db),
		repository.NewInventoryRepository(f.db),
		30, 7)
	return f, svc
}

// seedSales writes one SALE movement per day, newest day last.
// quantities[i] is the amount sold (daysAgo = len-1-i).
func seedSales(t *testing.T, f *fixture, productID int64, quantities []int) {
	t.Helper()
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())

	for i, qty := range quantities {
		if qty == 0 {
			continue
		}
		daysAgo := len(quantities) - 1 - i
		m := &model.StockMovement{
			ShopID:        f.shop.ID,
			ProductID:     productID,
			MovementType:  model.MovementTypeSale,
			Quantity:      -qty,
			ReferenceType: model.ReferenceTypeOrder,
			MovedBy:       f.owner.ID,
			CreatedAt:     today.AddDate(0, 0, -daysAgo),
		}
		if err := f.db.Create(m).Error; err != nil {
			t.Fatalf("failed to seed movement: %v", err)
		}
	}
}

func constantSeries(n, v int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestMovingAverage(t *testing.T) {
	smoothed := movingAverage([]float64{7, 7, 7, 7, 7, 7, 7, 7})
	for i, v := range smoothed {
		if v != 7 {
			t.Errorf("smoothed[%d] = %f, want 7", i, v)
		}
	}

	smoothed = movingAverage([]float64{2, 4})
	if smoothed[0] != 2 {
		t.Errorf("smoothed[0] = %f, want 2", smoothed[0])
	}
	if smoothed[1] != 3 {
		t.Errorf("smoothed[1] = %f, want 3", smoothed[1])
	}
}

func TestLinearTrend(t *testing.T) {
	// exact line y = 2x + 1
	slope, intercept := linearTrend([]float64{1, 3, 5, 7, 9})
	if math.Abs(slope-2) > 1e-9 {
		t.Errorf("slope = %f, want 2", slope)
	}
	if math.Abs(intercept-1) > 1e-9 {
		t.Errorf("intercept = %f, want 1", intercept)
	}

	slope, intercept = linearTrend([]float64{4, 4, 4})
	if math.Abs(slope) > 1e-9 {
		t.Errorf("slope = %f, want 0 for flat series", slope)
	}
	if math.Abs(intercept-4) > 1e-9 {
		t.Errorf("intercept = %f, want 4", intercept)
	}
}

func TestDemandForecastSteadySales(t *testing.T) {
	f, svc := newForecastFixture(t)
	seedSales(t, f, f.chai.ID, constantSeries(30, 5))

	forecast, err := svc.GetDemandForecast(context.Background(), f.shop.ID, f.chai.ID)
	if err != nil {
		t.Fatalf("GetDemandForecast failed: %v", err)
	}

	if math.Abs(forecast.AvgDailySales-5) > 0.01 {
		t.Errorf("avg daily sales = %f, want 5", forecast.AvgDailySales)
	}
	if len(forecast.ForecastDaily) != 7 {
		t.Fatalf("forecast days = %d, want 7", len(forecast.ForecastDaily))
	}
	for i, v := range forecast.ForecastDaily {
		if math.Abs(v-5) > 0.5 {
			t.Errorf("forecast[%d] = %f, want about 5", i, v)
		}
	}
	if forecast.CurrentStock != 20 {
		t.Errorf("current stock = %d, want 20", forecast.CurrentStock)
	}
	if forecast.DaysUntilEmpty == nil || *forecast.DaysUntilEmpty != 4 {
		t.Errorf("days until empty = %v, want 4", forecast.DaysUntilEmpty)
	}
}

func TestDemandForecastNeverNegative(t *testing.T) {
	f, svc := newForecastFixture(t)

	// steep decline: the raw trend line goes below zero inside the horizon
	declining := make([]int, 30)
	for i := range declining {
		v := 60 - i*2
		if v < 0 {
			v = 0
		}
		declining[i] = v
	}
	seedSales(t, f, f.chai.ID, declining)

	forecast, err := svc.GetDemandForecast(context.Background(), f.shop.ID, f.chai.ID)
	if err != nil {
		t.Fatalf("GetDemandForecast failed: %v", err)
	}
	for i, v := range forecast.ForecastDaily {
		if v < 0 {
			t.Errorf("forecast[%d] = %f, negative demand projected", i, v)
		}
	}
}

func TestDemandForecastNoHistory(t *testing.T) {
	f, svc := newForecastFixture(t)

	forecast, err := svc.GetDemandForecast(context.Background(), f.shop.ID, f.chai.ID)
	if err != nil {
		t.Fatalf("GetDemandForecast failed: %v", err)
	}
	if forecast.AvgDailySales != 0 {
		t.Errorf("avg = %f, want 0 with no history", forecast.AvgDailySales)
	}
	if forecast.DaysUntilEmpty != nil {
		t.Error("days until empty should be unset with no sales")
	}
}

func TestSalesAnomalies(t *testing.T) {
	f, svc := newForecastFixture(t)

	series := constantSeries(30, 5)
	series[20] = 50 // festival rush
	seedSales(t, f, f.chai.ID, series)

	anomalies, err := svc.GetSalesAnomalies(context.Background(), f.shop.ID, f.chai.ID)
	if err != nil {
		t.Fatalf("GetSalesAnomalies failed: %v", err)
	}
	if len(anomalies) != 1 {
		t.Fatalf("anomalies = %d, want 1", len(anomalies))
	}
	if anomalies[0].Quantity != 50 {
		t.Errorf("anomaly quantity = %f, want 50", anomalies[0].Quantity)
	}
}

func TestSalesAnomaliesFlatSeries(t *testing.T) {
	f, svc := newForecastFixture(t)
	seedSales(t, f, f.chai.ID, constantSeries(30, 5))

	anomalies, err := svc.GetSalesAnomalies(context.Background(), f.shop.ID, f.chai.ID)
	if err != nil {
		t.Fatalf("GetSalesAnomalies failed: %v", err)
	}
	if len(anomalies) != 0 {
		t.Errorf("anomalies = %d, want 0 for flat series", len(anomalies))
	}
}

func TestReorderSuggestions(t *testing.T) {
	f, svc := newForecastFixture(t)
	ctx := context.Background()

	// chai sells 5 a day and is nearly out
	seedSales(t, f, f.chai.ID, constantSeries(30, 5))
	if _, err := f.inventory.UpdateStock(ctx, f.shop.ID, f.chai.ID, "", -18, f.owner.ID); err != nil {
		t.Fatalf("UpdateStock failed: %v", err)
	}

	suggestions, err := svc.GetReorderSuggestions(ctx, f.shop.ID)
	if err != nil {
		t.Fatalf("GetReorderSuggestions failed: %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("suggestions = %d, want 1", len(suggestions))
	}

	s := suggestions[0]
	if s.ProductID != f.chai.ID {
		t.Errorf("suggested product = %d, want %d", s.ProductID, f.chai.ID)
	}
	// 7 days at 5/day needs 35, minus 2 on hand = 33, above the
	// catalog reorder quantity of 24
	if s.SuggestedQuantity != 33 {
		t.Errorf("suggested quantity = %d, want 33", s.SuggestedQuantity)
	}
}
