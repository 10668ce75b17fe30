package gateway

import (
	"strconv"
	"strings"
	"time"

	"github.com/example/clickmenu/pkg/models"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func firstQuery(c *gin.Context, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(c.Query(k)); v != "" {
			return v
		}
	}
	return ""
}

// pageQuery reads limit and offset. Garbage falls back to the defaults that
// models.NewPage applies.
func pageQuery(c *gin.Context) models.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return models.NewPage(limit, offset)
}

// parseBound accepts a date or an RFC 3339 timestamp. A bare date used as
// an upper bound covers the whole day.
func parseBound(value string, upper bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func orderFilter(c *gin.Context) (models.OrderFilter, error) {
	f := models.OrderFilter{
		StoreID: firstQuery(c, "store_id", "storeId"),
		Query:   firstQuery(c, "q", "search"),
		Page:    pageQuery(c),
	}
	if raw := firstQuery(c, "status"); raw != "" {
		st, ok := models.ParseOrderStatus(raw)
		if !ok {
			st = models.OrderStatus(raw)
		}
		f.Status = st
	}
	var err error
	if f.From, err = parseBound(firstQuery(c, "from"), false); err != nil {
		return f, badRequest("from", "must be YYYY-MM-DD or RFC 3339")
	}
	if f.To, err = parseBound(firstQuery(c, "to"), true); err != nil {
		return f, badRequest("to", "must be YYYY-MM-DD or RFC 3339")
	}
	return f, nil
}

func menuFilter(c *gin.Context) (models.MenuFilter, error) {
	f := models.MenuFilter{
		StoreID:      firstQuery(c, "store_id", "storeId"),
		Query:        firstQuery(c, "q", "search"),
		Category:     firstQuery(c, "category"),
		Status:       models.ItemStatus(firstQuery(c, "availability", "status")),
		MissingMedia: c.Query("missing_media") == "1" || c.Query("missing_media") == "true",
		Page:         pageQuery(c),
	}
	if raw := firstQuery(c, "featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return f, badRequest("featured", "must be true or false")
		}
		f.Featured = &featured
	}
	return f, nil
}

func storeFilter(c *gin.Context) models.StoreFilter {
	return models.StoreFilter{
		Query:  firstQuery(c, "q", "search"),
		Status: models.StoreStatus(firstQuery(c, "status")),
		Page:   pageQuery(c),
	}
}
