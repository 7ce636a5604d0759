package handler

import (
	"strconv"
	"time"

	"shopledger/internal/auth"
	"shopledger/pkg/response"

	"github.com/gin-gonic/gin"
)

func pathInt64(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v < 1 {
		response.FailKind(c, response.KindValidation, "invalid "+name)
		return 0, false
	}
	return v, true
}

// shopScope resolves the shop id from the path and enforces tenancy.
func shopScope(c *gin.Context) (auth.Actor, int64, bool) {
	actor := actorFrom(c)
	shopID, ok := pathInt64(c, "shop_id")
	if !ok {
		return actor, 0, false
	}
	if !auth.CanAccessShop(actor, shopID) {
		response.FailKind(c, response.KindForbidden, "no access to this shop")
		return actor, 0, false
	}
	return actor, shopID, true
}

func pagination(c *gin.Context) (offset, limit int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size < 1 || size > 100 {
		size = 20
	}
	return (page - 1) * size, size
}

// dateRange parses from/to query params, defaulting to the last 30
// days. The range is half open: [from, to).
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now.AddDate(0, 0, 1)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, now.Location())
		if err != nil {
			response.FailKind(c, response.KindValidation, "invalid from date, expected YYYY-MM-DD")
			return from, to, false
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, now.Location())
		if err != nil {
			response.FailKind(c, response.KindValidation, "invalid to date, expected YYYY-MM-DD")
			return from, to, false
		}
		to = parsed.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		response.FailKind(c, response.KindValidation, "from must be before to")
		return from, to, false
	}
	return from, to, true
}
