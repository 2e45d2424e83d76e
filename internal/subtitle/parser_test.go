// SPDX-License-Identifier: MIT
package subtitle

import "testing"

const sampleSRT = "1\n00:00:01,000 --> 00:00:02,500\nHello\n\n2\n00:00:03,000 --> 00:00:04,000\nWorld\n"

func TestParseStringTwoCues(t *testing.T) {
	cues, err := ParseString(sampleSRT)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}

	if cues[0].Text != "Hello" || cues[0].Start != 1.0 || cues[0].End != 2.5 {
		t.Errorf("cue 0: got %+v", cues[0])
	}
	if cues[1].Text != "World" || cues[1].Start != 3.0 || cues[1].End != 4.0 {
		t.Errorf("cue 1: got %+v", cues[1])
	}
}

func TestParseMultilineText(t *testing.T) {
	in := "1\n00:00:00,000 --> 00:00:01,000\nLine one\nLine two\n\n"
	cues, err := ParseString(in)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(cues) != 1 || cues[0].Text != "Line one\nLine two" {
		t.Fatalf("got %+v", cues)
	}
}

func TestParseTrailingCueWithoutBlankLine(t *testing.T) {
	in := "1\n00:00:00,000 --> 00:00:01,000\nNo trailing blank"
	cues, err := ParseString(in)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(cues) != 1 || cues[0].Text != "No trailing blank" {
		t.Fatalf("got %+v", cues)
	}
}

func TestParseMalformedTimingRejectsWholeInput(t *testing.T) {
	in := "1\nnot a timing line\nHello\n\n"
	if _, err := ParseString(in); err == nil {
		t.Fatal("expected error for malformed timing line, got nil")
	}
}

func TestParseMalformedTimestampRejected(t *testing.T) {
	in := "1\n00:00:0X,000 --> 00:00:02,500\nHello\n\n"
	if _, err := ParseString(in); err == nil {
		t.Fatal("expected error for malformed timestamp, got nil")
	}
}

func TestParseEmptyInputYieldsNoCues(t *testing.T) {
	cues, err := ParseString("")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(cues) != 0 {
		t.Fatalf("got %d cues, want 0", len(cues))
	}
}

func TestParseTimestampBoundary(t *testing.T) {
	ts, err := parseTimestamp("01:02:03,456")
	if err != nil {
		t.Fatalf("parseTimestamp: %v", err)
	}
	want := 1*3600.0 + 2*60.0 + 3.0 + 0.456
	if ts != want {
		t.Errorf("got %v, want %v", ts, want)
	}
}
