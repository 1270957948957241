package audio

// Resample converts samples from one rate to another with a box filter:
// each output sample is the mean of the input window it covers. This is a
// decimation-quality resampler; it is what the capture path needs to take
// a 48 kHz microphone stream down to the 16 kHz the endpoint ingests.
//
// The output length is floor(len(samples) / (from/to)). When from == to the
// input is returned unchanged.
func Resample(samples []float32, from, to int) []float32 {
	if from == to || from <= 0 || to <= 0 {
		return samples
	}
	ratio := float64(from) / float64(to)
	n := int(float64(len(samples)) / ratio)
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		start := int(float64(i) * ratio)
		end := int(float64(i+1) * ratio)
		if end > len(samples) {
			end = len(samples)
		}
		if end <= start {
			// Empty window (upsampling edge); leave silence.
			continue
		}
		var sum float32
		for j := start; j < end; j++ {
			sum += samples[j]
		}
		out[i] = sum / float32(end-start)
	}
	return out
}
