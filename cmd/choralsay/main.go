package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	choral "github.com/bretbouchard/choral-v2-sub002"
	"github.com/bretbouchard/choral-v2-sub002/synth"
)

func main() {
	langPath := flag.String("lang", "", "path to language file (YAML or JSON)")
	text := flag.String("text", "", "text to sing")
	method := flag.String("method", "formant", "synthesis method: formant, subharmonic, diphone")
	rate := flag.Float64("rate", 0, "speech rate in words per second (0 = language default)")
	pitch := flag.Float64("pitch", 0, "fixed fundamental in Hz (0 = per-phoneme targets)")
	preset := flag.String("preset", "", "overtone-singing preset (subharmonic method only)")
	outPath := flag.String("o", "out.wav", "output WAV file")
	verbose := flag.Bool("v", false, "verbose output")

	flag.Parse()

	if *langPath == "" || *text == "" {
		fmt.Fprintln(os.Stderr, "Usage: choralsay -lang LANGUAGE -text TEXT [-method M] [-o OUT.wav]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	opts := []choral.Option{choral.WithMethod(*method)}
	if *rate > 0 {
		opts = append(opts, choral.WithSpeechRate(*rate))
	}
	if *pitch > 0 {
		opts = append(opts, choral.WithPitch(*pitch))
	}

	s, err := choral.NewSynthesizer(*langPath, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if s.Method().Name() != *method {
		fmt.Fprintf(os.Stderr, "Error: unknown method %q (want formant, subharmonic, or diphone)\n", *method)
		os.Exit(1)
	}
	if *preset != "" {
		if err := s.ApplyPreset(*preset); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v (presets: %v)\n", err, synth.PresetNames())
			os.Exit(1)
		}
	}

	result := s.Convert(*text)
	if *verbose {
		fmt.Fprintf(os.Stderr, "Phonemes: %s\n", result.PhonemeString())
		fmt.Fprintf(os.Stderr, "Duration: %.2fs  (dict %d, rules %d, fallbacks %d)\n",
			result.TotalDuration,
			result.Stats.DictionaryHits, result.Stats.RuleMatches, result.Stats.Fallbacks)
	}

	samples, err := s.RenderPhonemes(result.Phonemes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := writeWav(*outPath, samples, 44100); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "Wrote %d samples to %s\n", len(samples), *outPath)
	}
}

func writeWav(path string, samples []float64, sampleRate int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	data := make([]int, len(samples))
	for i, v := range samples {
		clamped := math.Max(-1, math.Min(1, v))
		data[i] = int(clamped * 32767)
	}

	enc := wav.NewEncoder(file, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
