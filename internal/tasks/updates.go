package tasks

import "fmt"

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
	FetchPlaylist Phase = iota
	ProcessTracks
	Summary
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylist:
		return "fetch_playlist"
	case ProcessTracks:
		return "process_tracks"
	case Summary:
		return "summary"
	default:
		return ""
	}
}

func fetchPlaylistUpdate(playlistID string, limit int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    0,
		Total:   limit,
		Message: fmt.Sprintf("Fetching up to %d tracks from playlist %s...", limit, playlistID),
	}
}

func fetchedPlaylistUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    count,
		Total:   count,
		Message: fmt.Sprintf("Fetched %d playlist entries", count),
	}
}

func trackUpdate(step, total int, outcome TrackOutcome) ProgressUpdate {
	var msg string
	switch outcome.Outcome {
	case OutcomeSkipped:
		msg = fmt.Sprintf("[%d/%d] - (removed track)", step, total)
	case OutcomeInserted:
		msg = fmt.Sprintf("[%d/%d] ✓ %s - %s", step, total, outcome.Artist, outcome.Title)
	case OutcomeDuplicate:
		msg = fmt.Sprintf("[%d/%d] = %s - %s (already stored)", step, total, outcome.Artist, outcome.Title)
	case OutcomeMissed:
		msg = fmt.Sprintf("[%d/%d] ? %s - %s (no lyrics)", step, total, outcome.Artist, outcome.Title)
	default:
		msg = fmt.Sprintf("[%d/%d] ✗ %s - %s: %v", step, total, outcome.Artist, outcome.Title, outcome.Err)
	}

	return ProgressUpdate{
		Phase:   ProcessTracks,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    outcome,
	}
}

func summaryUpdate(result *IngestResult) ProgressUpdate {
	return ProgressUpdate{
		Phase: Summary,
		Step:  result.Fetched,
		Total: result.Fetched,
		Message: fmt.Sprintf(
			"Done: %d inserted, %d already stored, %d without lyrics, %d failed, %d removed",
			result.Inserted, result.Duplicates, result.Missed, result.Failed, result.Skipped,
		),
		Data: result,
	}
}
