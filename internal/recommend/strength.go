// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package recommend

import "github.com/cipondok/astra-villa-nexus-sub017/internal/models"

// Per-type base signal strengths. Unknown types fall back to the view
// baseline.
const (
	strengthView    = 0.3
	strengthDwell   = 0.5
	strengthSave    = 0.8
	strengthShare   = 0.7
	strengthInquiry = 1.0
	strengthRevisit = 0.6
	strengthCompare = 0.4
	strengthDefault = 0.3
)

// Engagement-depth bonus multipliers. Multipliers compound; the final
// strength is capped at 1.0.
const (
	bonusLongDwellSeconds   = 120
	bonusLongDwellFactor    = 1.3
	bonusDeepScrollPercent  = 80
	bonusDeepScrollFactor   = 1.2
	bonusManyPhotosCount    = 5
	bonusManyPhotosFactor   = 1.1
	signalStrengthCap       = 1.0
)

// SignalStrength computes the strength of one behavior signal from its
// type and engagement depth.
func SignalStrength(signalType string, data *models.SignalData) float64 {
	strength := baseStrength(signalType)

	if data != nil {
		if data.TimeSpent > bonusLongDwellSeconds {
			strength *= bonusLongDwellFactor
		}
		if data.ScrollDepth > bonusDeepScrollPercent {
			strength *= bonusDeepScrollFactor
		}
		if data.PhotosViewed > bonusManyPhotosCount {
			strength *= bonusManyPhotosFactor
		}
	}

	if strength > signalStrengthCap {
		strength = signalStrengthCap
	}
	return strength
}

func baseStrength(signalType string) float64 {
	switch signalType {
	case models.SignalView:
		return strengthView
	case models.SignalDwell:
		return strengthDwell
	case models.SignalSave:
		return strengthSave
	case models.SignalShare:
		return strengthShare
	case models.SignalInquiry:
		return strengthInquiry
	case models.SignalRevisit:
		return strengthRevisit
	case models.SignalCompare:
		return strengthCompare
	default:
		return strengthDefault
	}
}
