package service

import (
	"context"
	"errors"
	"math"
	"time"

	"shopledger/internal/model"
	"shopledger/internal/repository"
	"shopledger/pkg/response"

	"gorm.io/gorm"
)

// ForecastService estimates product demand from the stock movement
// audit trail. Sales are bucketed per calendar day over a sliding
// window, then smoothed with a moving average and extrapolated with a
// least-squares trend line.
type ForecastService struct {
	db            *gorm.DB
	productRepo   *repository.ProductRepository
	inventoryRepo *repository.InventoryRepository
	windowDays    int
	horizonDays   int
}

func NewForecastService(db *gorm.DB, productRepo *repository.ProductRepository, inventoryRepo *repository.InventoryRepository, windowDays, horizonDays int) *ForecastService {
	if windowDays < 1 {
		windowDays = 30
	}
	if horizonDays < 1 {
		horizonDays = 7
	}
	return &ForecastService{
		db:            db,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		windowDays:    windowDays,
		horizonDays:   horizonDays,
	}
}

// dailySales returns one bucket per day in the window, oldest first.
// Days without sales count as zero so gaps do not inflate the trend.
func (s *ForecastService) dailySales(ctx context.Context, shopID, productID int64) ([]float64, error) {
	now := time.Now()
	windowStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(s.windowDays - 1))

	var movements []model.StockMovement
	err := s.db.WithContext(ctx).
		Where("shop_id = ? AND product_id = ? AND movement_type = ? AND created_at >= ?",
			shopID, productID, model.MovementTypeSale, windowStart).
		Order("created_at").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}

	buckets := make([]float64, s.windowDays)
	for _, m := range movements {
		day := int(m.CreatedAt.Sub(windowStart).Hours() / 24)
		if day < 0 || day >= s.windowDays {
			continue
		}
		// SALE movements carry negative quantities.
		buckets[day] += float64(-m.Quantity)
	}
	return buckets, nil
}

// movingAverage smooths with a trailing window of up to 7 days.
func movingAverage(series []float64) []float64 {
	const window = 7
	smoothed := make([]float64, len(series))
	sum := 0.0
	for i, v := range series {
		sum += v
		if i >= window {
			sum -= series[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		smoothed[i] = sum / float64(n)
	}
	return smoothed
}

// linearTrend fits y = slope*x + intercept by least squares.
func linearTrend(series []float64) (slope, intercept float64) {
	n := float64(len(series))
	if n < 2 {
		if n == 1 {
			return 0, series[0]
		}
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

type DemandForecast struct {
	ProductID      int64     `json:"product_id"`
	ProductName    string    `json:"product_name"`
	WindowDays     int       `json:"window_days"`
	AvgDailySales  float64   `json:"avg_daily_sales"`
	TrendPerDay    float64   `json:"trend_per_day"`
	ForecastDaily  []float64 `json:"forecast_daily"`
	ForecastTotal  float64   `json:"forecast_total"`
	CurrentStock   int       `json:"current_stock"`
	DaysUntilEmpty *int      `json:"days_until_empty,omitempty"`
}

// GetDemandForecast projects daily demand over the horizon. Projected
// values are clamped at zero since demand cannot be negative.
func (s *ForecastService) GetDemandForecast(ctx context.Context, shopID, productID int64) (*DemandForecast, error) {
	product, err := s.productRepo.GetByID(ctx, nil, shopID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, response.NotFound("product not found")
		}
		return nil, err
	}

	series, err := s.dailySales(ctx, shopID, productID)
	if err != nil {
		return nil, err
	}

	smoothed := movingAverage(series)
	slope, intercept := linearTrend(smoothed)

	total := 0.0
	for _, v := range series {
		total += v
	}
	avg := total / float64(len(series))

	forecast := make([]float64, s.horizonDays)
	forecastTotal := 0.0
	for i := range forecast {
		x := float64(len(smoothed) + i)
		projected := slope*x + intercept
		if projected < 0 {
			projected = 0
		}
		forecast[i] = math.Round(projected*100) / 100
		forecastTotal += forecast[i]
	}

	stock, err := s.inventoryRepo.AvailableQuantity(ctx, nil, shopID, productID)
	if err != nil {
		return nil, err
	}

	result := &DemandForecast{
		ProductID:     productID,
		ProductName:   product.Name,
		WindowDays:    s.windowDays,
		AvgDailySales: math.Round(avg*100) / 100,
		TrendPerDay:   math.Round(slope*10000) / 10000,
		ForecastDaily: forecast,
		ForecastTotal: math.Round(forecastTotal*100) / 100,
		CurrentStock:  stock,
	}
	if avg > 0 {
		days := int(float64(stock) / avg)
		result.DaysUntilEmpty = &days
	}
	return result, nil
}

type ReorderSuggestion struct {
	ProductID         int64   `json:"product_id"`
	ProductName       string  `json:"product_name"`
	CurrentStock      int     `json:"current_stock"`
	MinQuantity       int     `json:"min_quantity"`
	AvgDailySales     float64 `json:"avg_daily_sales"`
	SuggestedQuantity int     `json:"suggested_quantity"`
}

// GetReorderSuggestions covers every low-stock product: order enough to
// cover the forecast horizon, never less than the catalog's configured
// reorder quantity.
func (s *ForecastService) GetReorderSuggestions(ctx context.Context, shopID int64) ([]ReorderSuggestion, error) {
	lowStock, err := s.inventoryRepo.ListLowStock(ctx, shopID)
	if err != nil {
		return nil, err
	}

	suggestions := make([]ReorderSuggestion, 0, len(lowStock))
	seen := make(map[int64]bool)
	for _, row := range lowStock {
		if seen[row.ProductID] {
			continue
		}
		seen[row.ProductID] = true

		product, err := s.productRepo.GetByID(ctx, nil, shopID, row.ProductID)
		if err != nil {
			continue
		}

		series, err := s.dailySales(ctx, shopID, row.ProductID)
		if err != nil {
			return nil, err
		}
		total := 0.0
		for _, v := range series {
			total += v
		}
		avg := total / float64(len(series))

		stock, err := s.inventoryRepo.AvailableQuantity(ctx, nil, shopID, row.ProductID)
		if err != nil {
			return nil, err
		}

		needed := int(math.Ceil(avg*float64(s.horizonDays))) - stock
		if needed < product.ReorderQuantity {
			needed = product.ReorderQuantity
		}
		if needed < 1 {
			continue
		}

		suggestions = append(suggestions, ReorderSuggestion{
			ProductID:         row.ProductID,
			ProductName:       product.Name,
			CurrentStock:      stock,
			MinQuantity:       row.MinQuantity,
			AvgDailySales:     math.Round(avg*100) / 100,
			SuggestedQuantity: needed,
		})
	}
	return suggestions, nil
}

type SalesAnomaly struct {
	Date     string  `json:"date"`
	Quantity float64 `json:"quantity"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
}

// GetSalesAnomalies flags days more than two standard deviations from
// the window mean, both spikes and droughts.
func (s *ForecastService) GetSalesAnomalies(ctx context.Context, shopID, productID int64) ([]SalesAnomaly, error) {
	if _, err := s.productRepo.GetByID(ctx, nil, shopID, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, response.NotFound("product not found")
		}
		return nil, err
	}

	series, err := s.dailySales(ctx, shopID, productID)
	if err != nil {
		return nil, err
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))

	variance := 0.0
	for _, v := range series {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(series))
	stdDev := math.Sqrt(variance)

	if stdDev == 0 {
		return []SalesAnomaly{}, nil
	}

	now := time.Now()
	windowStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(s.windowDays - 1))

	anomalies := make([]SalesAnomaly, 0)
	for i, v := range series {
		if math.Abs(v-mean) > 2*stdDev {
			anomalies = append(anomalies, SalesAnomaly{
				Date:     windowStart.AddDate(0, 0, i).Format("2006-01-02"),
				Quantity: v,
				Mean:     math.Round(mean*100) / 100,
				StdDev:   math.Round(stdDev*100) / 100,
			})
		}
	}
	return anomalies, nil
}
