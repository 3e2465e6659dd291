// Command sondedec demodulates and decodes radiosonde telemetry from one
// or more audio or IQ sample files, printing one text line or JSON
// object per recovered frame. The flag+logrus+signal.Notify skeleton is
// adapted from cmd/ntrip-server/main.go; multi-file input fans out
// across pkg/batch's worker pool the same way that command spread RTCM
// message handling across workers.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"flag"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sondedec/sondedec/pkg/audio"
	"github.com/sondedec/sondedec/pkg/batch"
	"github.com/sondedec/sondedec/pkg/config"
	"github.com/sondedec/sondedec/pkg/frame"
	"github.com/sondedec/sondedec/pkg/gnss"
	"github.com/sondedec/sondedec/pkg/output"
	"github.com/sondedec/sondedec/pkg/sonde"
)

func main() {
	sondeType := flag.String("type", "rs41", "sonde type: rs41, rs92, dfm, lms6, m10")
	inputPath := flag.String("input", "", "path to WAV/PCM/IQ sample file (additional files may follow as positional arguments)")
	rawPCM := flag.Bool("pcm", false, "treat input as headerless raw PCM")
	pcmBits := flag.Int("bits", 16, "raw PCM sample width (8 or 16)")
	pcmChannels := flag.Int("channels", 1, "raw PCM channel count")
	sampleRate := flag.Int("rate", 48000, "sample rate for raw PCM / IQ input")
	iq := flag.Bool("iq", false, "treat input as interleaved float32 I/Q")
	ch2 := flag.Bool("ch2", false, "select the right audio channel")
	jsonOut := flag.Bool("json", false, "emit line-delimited JSON instead of text")
	rawOut := flag.Bool("raw", false, "emit hex frames only, skip decode")
	invert := flag.Bool("i", false, "invert demodulator polarity")
	bitShift := flag.Int("d", 0, "bit-sampling phase offset in samples, -4..4")
	threshold := flag.Float64("ths", 0, "correlation threshold override, 0 = sonde default")
	ecc2 := flag.Bool("ecc2", false, "enable the second-pass Reed-Solomon repair policy")
	crcReport := flag.Bool("crc", false, "warn on any failing per-block CRC")
	vel := flag.String("vel", "lsq", "velocity mode: lsq, single, doppler")
	nmeaOut := flag.String("nmea-out", "", "append NMEA GGA/RMC sentences to this file")
	semFile := flag.String("a", "", "SEM almanac file for RS92 position solving (optionally .gz/.zip)")
	rinexFile := flag.String("e", "", "RINEX navigation file for RS92 position solving (optionally .gz/.zip)")
	workers := flag.Int("workers", 4, "worker count for multi-file input")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatalf("invalid log level: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Default()
	cfg.InputPath = *inputPath
	cfg.RawPCM = *rawPCM
	cfg.PCMBits = *pcmBits
	cfg.IQ = *iq
	cfg.Channel2 = *ch2
	cfg.PCMChannels = *pcmChannels
	cfg.SampleRate = *sampleRate
	cfg.JSON = *jsonOut
	cfg.Raw = *rawOut
	cfg.Invert = *invert
	cfg.BitShift = *bitShift
	cfg.Threshold = *threshold
	cfg.LogLevel = *logLevel
	cfg.CRCReport = *crcReport
	cfg.Workers = *workers
	cfg.SEMFile = *semFile
	cfg.RINEXFile = *rinexFile
	if *ecc2 {
		cfg.ECC = config.ECCTwoPass
	}
	switch *vel {
	case "single":
		cfg.Velocity = config.VelocitySingle
	case "doppler":
		cfg.Velocity = config.VelocityDoppler
	default:
		cfg.Velocity = config.VelocityLSQ
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("%v", err)
	}

	// session is a per-run correlation tag threaded through logging and
	// JSON output, so multiple concurrent decode runs writing to the
	// same log stream or downstream aggregator can be told apart.
	session := uuid.New().String()
	log := logger.WithField("session", session)

	kind, ok := sondeKindFromFlag(*sondeType)
	if !ok {
		log.Fatalf("unknown sonde type %q", *sondeType)
	}

	inputs := flag.Args()
	if cfg.InputPath != "" {
		inputs = append([]string{cfg.InputPath}, inputs...)
	}
	if len(inputs) == 0 {
		log.Fatal("no input file given (--input or positional arguments)")
	}

	var ephemerides map[int]gnss.Ephemeris
	var gpsWeek int
	if cfg.SEMFile != "" || cfg.RINEXFile != "" {
		ephemerides, gpsWeek = loadEphemerides(cfg, log)
	}

	var nmeaFile *os.File
	var nmeaMu sync.Mutex
	if *nmeaOut != "" {
		nmeaFile, err = os.OpenFile(*nmeaOut, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("open nmea output: %v", err)
		}
		defer nmeaFile.Close()
	}

	sk := &sink{cfg: cfg, session: session, logger: log, nmea: nmeaFile, nmeaMu: &nmeaMu}

	var wg sync.WaitGroup
	wg.Add(len(inputs))
	decode := func(ctx context.Context, job batch.Job, emit func(sonde.DecodedFrame, error)) {
		defer wg.Done()
		if err := decodeFile(ctx, job.Path, cfg, kind, ephemerides, gpsWeek, sk); err != nil {
			emit(sonde.DecodedFrame{}, fmt.Errorf("%s: %w", job.Path, err))
		}
	}

	pool := batch.NewPool(cfg.Workers, len(inputs), decode)
	for _, in := range inputs {
		pool.Submit(batch.Job{Path: in})
	}

	var stopOnce sync.Once
	stop := func() { stopOnce.Do(pool.Stop) }

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("received interrupt, shutting down")
		stop()
	}()
	go func() {
		wg.Wait()
		stop()
	}()

	failed := false
	for res := range pool.Results() {
		if res.Err != nil {
			log.Errorf("%v", res.Err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// sink bundles the per-run output destinations a decodeFile call writes
// decoded frames to: stdout (text or JSON) and, optionally, an NMEA
// sentence file shared (and mutex-guarded) across every worker.
type sink struct {
	cfg     config.Config
	session string
	logger  *logrus.Entry
	nmea    *os.File
	nmeaMu  *sync.Mutex
}

func (s *sink) emit(f sonde.DecodedFrame) {
	if s.cfg.CRCReport {
		reportCRC(f, s.logger)
	}

	if s.cfg.JSON {
		line, err := output.FormatJSON(f, s.session)
		if err != nil {
			s.logger.Warnf("json encode: %v", err)
		} else {
			fmt.Println(string(line))
		}
	} else {
		fmt.Println(output.FormatLine(f))
	}

	if s.nmea != nil {
		if line := output.FormatNMEA(f); line != "" {
			s.nmeaMu.Lock()
			fmt.Fprintln(s.nmea, line)
			s.nmeaMu.Unlock()
		}
	}
}

// reportCRC warns once per frame listing which per-block CRC checks
// failed.
func reportCRC(f sonde.DecodedFrame, logger *logrus.Entry) {
	checks := []struct {
		bit  sonde.StatusBit
		name string
	}{
		{sonde.StatusGPS1, "gps1"},
		{sonde.StatusGPS2, "gps2"},
		{sonde.StatusGPS3, "gps3"},
		{sonde.StatusPTU, "ptu"},
		{sonde.StatusAux, "aux"},
	}
	var failed []string
	for _, c := range checks {
		if f.CRCStatus&uint32(c.bit) == 0 {
			failed = append(failed, c.name)
		}
	}
	if len(failed) > 0 {
		logger.Warnf("frame %d: crc failed on %v", f.FrameNb, failed)
	}
}

// loadEphemerides reads the SEM almanac and/or RINEX navigation file
// named on the command line into a PRN-keyed ephemeris table for
// RS92's raw-pseudorange GNSSSolver path (-a/-e
// flags), logging how many records each source contributed.
func loadEphemerides(cfg config.Config, logger *logrus.Entry) (map[int]gnss.Ephemeris, int) {
	out := map[int]gnss.Ephemeris{}
	week := 0

	load := func(path, kind string) {
		if path == "" {
			return
		}
		ephs, err := gnss.LoadEphemerisFile(path)
		if err != nil {
			logger.Warnf("%s %s: %v", kind, path, err)
			return
		}
		for _, e := range ephs {
			out[e.PRN] = e
			if week == 0 {
				week = e.Week
			}
		}
		logger.Infof("loaded %d %s record(s) from %s", len(ephs), kind, path)
	}

	load(cfg.SEMFile, "SEM almanac")
	load(cfg.RINEXFile, "RINEX nav")
	return out, week
}

// decodeFile runs one input file's full demodulate-assemble-decode
// pipeline, calling sk.emit for every recovered frame. ephs/gpsWeek, if
// non-empty, feed RS92's GNSSSolver path and calendar resolution.
func decodeFile(ctx context.Context, path string, cfg config.Config, kind frame.SondeKind, ephs map[int]gnss.Ephemeris, gpsWeek int, sk *sink) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var src audio.SampleSource
	switch {
	case cfg.IQ:
		src = audio.NewIQSource(f, cfg.SampleRate, false, 0)
	case cfg.RawPCM:
		bits := audio.Bits16
		if cfg.PCMBits == 8 {
			bits = audio.Bits8
		}
		ch := 0
		if cfg.Channel2 {
			ch = 1
		}
		src = audio.NewPCMSource(f, cfg.SampleRate, bits, cfg.PCMChannels, ch)
	default:
		ch := 0
		if cfg.Channel2 {
			ch = 1
		}
		wav, err := audio.OpenWAV(f, ch)
		if err != nil {
			return fmt.Errorf("open WAV: %w", err)
		}
		src = wav
	}

	profile := frame.Profiles[kind]
	threshold := profile.ThresholdDefault
	if cfg.Threshold > 0 {
		threshold = cfg.Threshold
	}

	asm := frame.NewAssembler(profile, src.SampleRate(), threshold, cfg.Invert, cfg.BitShift)

	rs41 := sonde.NewRS41Decoder()
	rs92 := sonde.NewRS92Decoder()
	if gpsWeek > 0 {
		rs92.SetWeekHint(gpsWeek)
	}
	dfm := sonde.NewDFMDecoder()
	lms6 := sonde.NewLMS6Decoder()
	m10 := sonde.NewM10Decoder()

	twoPassECC := cfg.ECC == config.ECCTwoPass

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fr, err := asm.NextFrame(src)
		if err == frame.ErrEOF {
			return nil
		}
		if err != nil {
			return err
		}

		if cfg.Raw {
			fmt.Println(hex.EncodeToString(fr.Bytes))
			continue
		}

		var decoded sonde.DecodedFrame
		switch kind {
		case frame.RS41:
			decoded = rs41.ParseRS41(fr.Bytes, twoPassECC)
		case frame.RS92:
			decoded = rs92.ParseRS92(fr.Bytes, fr.HeaderErrs)
			if len(ephs) > 0 && decoded.GPSTOW > 0 {
				meas := rs92.ParseMeasurements(fr.Bytes)
				sats := sonde.BuildSats(meas, ephs, decoded.GPSWeek, decoded.GPSTOW)
				if fix, ok := gnss.Solve(sats, gnss.DefaultSolverConfig()); ok {
					sonde.ApplyFix(&decoded, fix)
				}
			}
		case frame.DFM:
			decoded = dfm.ParseDFM(fr.Bytes, fr.HeaderErrs)
		case frame.LMS6:
			decoded = lms6.ParseLMS6(fr.Bytes, fr.HeaderErrs)
		case frame.M10:
			decoded = m10.ParseM10(fr.Bytes)
		}

		sk.emit(decoded)
	}
}

func sondeKindFromFlag(s string) (frame.SondeKind, bool) {
	switch s {
	case "rs41":
		return frame.RS41, true
	case "rs92":
		return frame.RS92, true
	case "dfm":
		return frame.DFM, true
	case "lms6":
		return frame.LMS6, true
	case "m10":
		return frame.M10, true
	default:
		return 0, false
	}
}
