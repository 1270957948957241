// Package live runs the realtime voice session: it captures microphone
// audio, streams it to the assistant, schedules returned speech for gapless
// playback, detects user barge-in, meters levels for the UI, and dispatches
// the assistant's tool calls against the finance store.
package live
