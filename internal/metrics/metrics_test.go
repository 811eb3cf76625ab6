// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("get_recommendations", "200"))
	RecordAPIRequest("get_recommendations", 200, 25*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("get_recommendations", "200"))
	if after != before+1 {
		t.Errorf("expected counter increment, got %v -> %v", before, after)
	}
}

func TestRecordRecommendationBatch(t *testing.T) {
	before := testutil.ToFloat64(RecommendationsServed.WithLabelValues("discovery"))
	RecordRecommendationBatch(8, 3, true, 50*time.Millisecond)
	after := testutil.ToFloat64(RecommendationsServed.WithLabelValues("discovery"))
	if after != before+3 {
		t.Errorf("expected +3 discovery, got %v -> %v", before, after)
	}
}

func TestRecordAIRequest(t *testing.T) {
	before := testutil.ToFloat64(AIRequests.WithLabelValues("rejected"))
	RecordAIRequest("rejected", time.Millisecond)
	after := testutil.ToFloat64(AIRequests.WithLabelValues("rejected"))
	if after != before+1 {
		t.Errorf("expected counter increment, got %v -> %v", before, after)
	}
}
