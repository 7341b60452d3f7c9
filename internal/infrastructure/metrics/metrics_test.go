package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/search", "200"))
	RecordAPIRequest("POST", "/api/v1/search", "200", 3*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/search", "200"))
	if after != before+1 {
		t.Errorf("api_requests_total = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active requests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestRecordRating(t *testing.T) {
	accepted := testutil.ToFloat64(RatingsTotal.WithLabelValues("accepted"))
	rejected := testutil.ToFloat64(RatingsTotal.WithLabelValues("rejected"))

	RecordRating(true)
	RecordRating(false)
	RecordRating(false)

	if got := testutil.ToFloat64(RatingsTotal.WithLabelValues("accepted")); got != accepted+1 {
		t.Errorf("accepted = %v, want %v", got, accepted+1)
	}
	if got := testutil.ToFloat64(RatingsTotal.WithLabelValues("rejected")); got != rejected+2 {
		t.Errorf("rejected = %v, want %v", got, rejected+2)
	}
}

func TestRecordDetection(t *testing.T) {
	fallback := testutil.ToFloat64(DetectionsTotal.WithLabelValues("fallback"))
	RecordDetection(true)
	if got := testutil.ToFloat64(DetectionsTotal.WithLabelValues("fallback")); got != fallback+1 {
		t.Errorf("fallback detections = %v, want %v", got, fallback+1)
	}
}

func TestSetCatalogSize(t *testing.T) {
	SetCatalogSize(20)
	if got := testutil.ToFloat64(CatalogSize); got != 20 {
		t.Errorf("catalog size = %v, want 20", got)
	}
}
