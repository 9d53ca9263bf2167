package captions

import (
	"log"
	"strings"

	"storycast/internal/types"
)

// Segment converts transcript segments into caption cues. With maxWords == 0
// every non-empty segment becomes one cue verbatim. With maxWords > 0 each
// segment's word timings are accumulated into chunks of at most maxWords
// words; a chunk's start is its first word's start, its end the last word's
// end, its text the space-joined words. Chunks never span segment boundaries.
// A segment that lacks word timings while splitting was requested is emitted
// whole rather than failing the job.
func Segment(segments []types.TranscriptSegment, maxWords int) []types.Cue {
	var cues []types.Cue

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)

		if maxWords <= 0 {
			if text == "" {
				continue
			}
			cues = append(cues, types.Cue{Start: seg.Start, End: seg.End, Text: text})
			continue
		}

		if len(seg.Words) == 0 {
			if text == "" {
				continue
			}
			log.Printf("[captions] segment %.2f-%.2f has no word timestamps, emitting it whole", seg.Start, seg.End)
			cues = append(cues, types.Cue{Start: seg.Start, End: seg.End, Text: text})
			continue
		}

		var chunk []types.WordTiming
		flush := func() {
			if len(chunk) == 0 {
				return
			}
			words := make([]string, len(chunk))
			for i, w := range chunk {
				words[i] = strings.TrimSpace(w.Word)
			}
			text := strings.TrimSpace(strings.Join(words, " "))
			if text != "" {
				cues = append(cues, types.Cue{
					Start: chunk[0].Start,
					End:   chunk[len(chunk)-1].End,
					Text:  text,
				})
			}
			chunk = chunk[:0]
		}

		for _, word := range seg.Words {
			chunk = append(chunk, word)
			if len(chunk) >= maxWords {
				flush()
			}
		}
		flush()
	}

	return cues
}
