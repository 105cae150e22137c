package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Walk Phase = iota
	Probe
	Index
	Prune
	Reindex
	Watch
)

func (p Phase) String() string {
	switch p {
	case Walk:
		return "walk"
	case Probe:
		return "probe"
	case Index:
		return "index"
	case Prune:
		return "prune"
	case Reindex:
		return "reindex"
	case Watch:
		return "watch"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func walkUpdate(root string) ProgressUpdate {
	return ProgressUpdate{Phase: Walk, Step: 1, Total: 1, Message: fmt.Sprintf("Walking %s...", root)}
}

func foundFilesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{Phase: Walk, Step: 1, Total: 1, Message: fmt.Sprintf("Found %d images", count), Data: count}
}

func probedUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Probe,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, path),
	}
}

func probeFailedUpdate(step, total int, path string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Probe,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, path, err),
	}
}

func indexUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{Phase: Index, Step: step, Total: total, Message: fmt.Sprintf("Indexed %d/%d images", step, total)}
}

func pruneUpdate(count int) ProgressUpdate {
	return ProgressUpdate{Phase: Prune, Step: 1, Total: 1, Message: fmt.Sprintf("Removed %d missing images", count), Data: count}
}

func reindexUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: Reindex, Step: 1, Total: 1, Message: "Rebuilding sort order..."}
}

func watchUpdate(root string, result *ScanResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Watch,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Rescanned %s: %d indexed, %d removed", root, result.Indexed, result.Removed),
		Data:    result,
	}
}
