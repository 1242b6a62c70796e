package transport

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"inventory-ledger/internal/domain"

	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

// queryError reports an unparseable query parameter
type queryError struct {
	param string
	value string
	want  string
}

func (e *queryError) Error() string {
	return fmt.Sprintf("invalid %s %q: expected %s", e.param, e.value, e.want)
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &queryError{param: "id", value: raw, want: "a positive integer"}
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, &queryError{param: name, value: raw, want: fmt.Sprintf("an integer between %d and %d", min, max)}
	}
	return v, nil
}

func queryPagination(r *http.Request) (domain.Pagination, error) {
	limit, err := queryInt(r, "limit", domain.DefaultLimit, 1, domain.MaxLimit)
	if err != nil {
		return domain.Pagination{}, err
	}
	offset, err := queryInt(r, "offset", 0, 0, int(^uint32(0)>>1))
	if err != nil {
		return domain.Pagination{}, err
	}
	return domain.Pagination{Limit: limit, Offset: offset}, nil
}

func queryString(r *http.Request, name string) *string {
	if v := r.URL.Query().Get(name); v != "" {
		return &v
	}
	return nil
}

func queryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, &queryError{param: name, value: raw, want: "a positive integer"}
	}
	return &id, nil
}

// queryTime accepts RFC 3339 timestamps or plain dates. A plain end date
// covers the whole day.
func queryTime(r *http.Request, name string, endOfDay bool) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, &queryError{param: name, value: raw, want: "an ISO 8601 date or timestamp"}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func queryPeriod(r *http.Request, def domain.Period) (domain.Period, error) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		return def, nil
	}
	return domain.ParsePeriod(raw)
}

func querySalesFilter(r *http.Request) (domain.SalesFilter, error) {
	var (
		f   domain.SalesFilter
		err error
	)
	if f.StartDate, err = queryTime(r, "start_date", false); err != nil {
		return f, err
	}
	if f.EndDate, err = queryTime(r, "end_date", true); err != nil {
		return f, err
	}
	if f.ProductID, err = queryID(r, "product_id"); err != nil {
		return f, err
	}
	f.Category = queryString(r, "category")
	if raw := queryString(r, "platform"); raw != nil {
		p := domain.Platform(*raw)
		if !p.Valid() {
			return f, &queryError{param: "platform", value: *raw, want: "amazon or walmart"}
		}
		f.Platform = &p
	}
	return f, nil
}

func queryHistoryFilter(r *http.Request) (domain.HistoryFilter, error) {
	var (
		f   domain.HistoryFilter
		err error
	)
	if f.ProductID, err = queryID(r, "product_id"); err != nil {
		return f, err
	}
	if raw := queryString(r, "change_type"); raw != nil {
		ct := domain.ChangeType(*raw)
		if !ct.Valid() {
			return f, &queryError{param: "change_type", value: *raw, want: "purchase, sale, adjustment or return"}
		}
		f.ChangeType = &ct
	}
	if f.StartDate, err = queryTime(r, "start_date", false); err != nil {
		return f, err
	}
	if f.EndDate, err = queryTime(r, "end_date", true); err != nil {
		return f, err
	}
	return f, nil
}
