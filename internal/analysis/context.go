package analysis

import (
	"fmt"
	"strings"

	"cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"google.golang.org/protobuf/types/known/durationpb"
)

const (
	maxFrameLabels       = 20
	maxObjectAppearances = 5

	emptyContextFallback = "The video analysis returned minimal results. The video may be very short or contain limited visual content."
)

// formatContext flattens annotation results into the scene/label/object
// description consumed by the prompt stage.
func formatContext(ann *videointelligencepb.VideoAnnotationResults) string {
	var parts []string

	if len(ann.GetShotAnnotations()) > 0 {
		parts = append(parts, "=== SCENE BREAKDOWN ===")
		for i, shot := range ann.GetShotAnnotations() {
			parts = append(parts, fmt.Sprintf("Scene %d: %.1fs - %.1fs",
				i+1,
				seconds(shot.GetStartTimeOffset()),
				seconds(shot.GetEndTimeOffset()),
			))
		}
	}

	if len(ann.GetShotLabelAnnotations()) > 0 {
		parts = append(parts, "\n=== DETECTED LABELS (per scene) ===")
		for _, label := range ann.GetShotLabelAnnotations() {
			name := label.GetEntity().GetDescription()

			var categories []string
			for _, cat := range label.GetCategoryEntities() {
				categories = append(categories, cat.GetDescription())
			}
			catSuffix := ""
			if len(categories) > 0 {
				catSuffix = fmt.Sprintf(" (categories: %s)", strings.Join(categories, ", "))
			}
			parts = append(parts, fmt.Sprintf("Label: %s%s", name, catSuffix))

			for _, segment := range label.GetSegments() {
				parts = append(parts, fmt.Sprintf("  %.1fs-%.1fs (confidence: %.2f)",
					seconds(segment.GetSegment().GetStartTimeOffset()),
					seconds(segment.GetSegment().GetEndTimeOffset()),
					segment.GetConfidence(),
				))
			}
		}
	}

	if len(ann.GetFrameLabelAnnotations()) > 0 {
		parts = append(parts, "\n=== FRAME-LEVEL LABELS ===")
		for i, label := range ann.GetFrameLabelAnnotations() {
			if i >= maxFrameLabels {
				break
			}
			parts = append(parts, fmt.Sprintf("- %s", label.GetEntity().GetDescription()))
		}
	}

	if len(ann.GetObjectAnnotations()) > 0 {
		parts = append(parts, "\n=== TRACKED OBJECTS ===")

		seen := make(map[string][]string)
		var order []string
		for _, obj := range ann.GetObjectAnnotations() {
			name := obj.GetEntity().GetDescription()
			if _, ok := seen[name]; !ok {
				order = append(order, name)
			}
			seen[name] = append(seen[name], fmt.Sprintf("  %.1fs-%.1fs (confidence: %.2f)",
				seconds(obj.GetSegment().GetStartTimeOffset()),
				seconds(obj.GetSegment().GetEndTimeOffset()),
				obj.GetConfidence(),
			))
		}

		for _, name := range order {
			parts = append(parts, fmt.Sprintf("Object: %s", name))
			appearances := seen[name]
			if len(appearances) > maxObjectAppearances {
				appearances = appearances[:maxObjectAppearances]
			}
			parts = append(parts, appearances...)
		}
	}

	context := strings.Join(parts, "\n")
	if strings.TrimSpace(context) == "" {
		return emptyContextFallback
	}
	return context
}

func seconds(d *durationpb.Duration) float64 {
	return d.AsDuration().Seconds()
}
