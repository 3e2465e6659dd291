package gnss

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mholt/archiver/v3"
)

// LoadEphemerisFile reads a SEM almanac or RINEX navigation file,
// transparently unwrapping a .gz or .zip wrapper since almanac/nav
// downloads are commonly shipped compressed. Format is picked by
// content, not just extension, since a decompressed temp file carries
// no reliable suffix of its own.
func LoadEphemerisFile(path string) ([]Ephemeris, error) {
	real, cleanup, err := unwrapCompressed(path)
	if err != nil {
		return nil, fmt.Errorf("ephemeris: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	f, err := os.Open(real)
	if err != nil {
		return nil, fmt.Errorf("ephemeris: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, err := br.Peek(80)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("ephemeris: %w", err)
	}

	if strings.Contains(string(head), "RINEX VERSION") {
		return ReadRINEXNav(br)
	}
	return ReadSEMAlmanac(br)
}

// unwrapCompressed decompresses path to a temp file if it is a
// single-file compressed format (.gz, .bz2, .xz, ...) or extracts a
// .zip/.tar archive to a temp directory and returns whichever member
// looks like an ephemeris file. Returns path itself, with a nil
// cleanup, when no unwrapping is needed.
func unwrapCompressed(path string) (resolved string, cleanup func(), err error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".zip", ".tar", ".tgz":
		dir, err := os.MkdirTemp("", "sondedec-ephemeris-*")
		if err != nil {
			return "", nil, err
		}
		if err := archiver.Unarchive(path, dir); err != nil {
			os.RemoveAll(dir)
			return "", nil, err
		}
		member, err := firstEphemerisFile(dir)
		if err != nil {
			os.RemoveAll(dir)
			return "", nil, err
		}
		return member, func() { os.RemoveAll(dir) }, nil
	case ".gz", ".bz2", ".xz", ".zst", ".lz4", ".sz":
		out, err := os.CreateTemp("", "sondedec-ephemeris-*")
		if err != nil {
			return "", nil, err
		}
		out.Close()
		if err := archiver.DecompressFile(path, out.Name()); err != nil {
			os.Remove(out.Name())
			return "", nil, err
		}
		return out.Name(), func() { os.Remove(out.Name()) }, nil
	default:
		return path, nil, nil
	}
}

func firstEphemerisFile(dir string) (string, error) {
	var found string
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil || found != "" || info.IsDir() {
			return err
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".sem", ".alm", ".yuma", ".n", ".nav", ".rnx":
			found = p
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("no almanac/nav file found in archive")
	}
	return found, nil
}

// ReadSEMAlmanac parses the whitespace-delimited SEM format
// read_SEMalmanac reads: a satellite count, almanac name, GPS
// week/time-of-applicability header, followed by one 14-field record
// per satellite (prn, svn, ura, eccentricity, inclination offset,
// OmegaDot, sqrt(a), Omega0, argument of perigee, M0, af0, af1, health,
// config). Fields scaled by pi in the source (OmegaDot, Omega0, w, M0)
// are de-semicircled here the same way.
func ReadSEMAlmanac(r io.Reader) ([]Ephemeris, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	next := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return sc.Text(), nil
	}
	nextInt := func() (int, error) {
		s, err := next()
		if err != nil {
			return 0, err
		}
		return strconv.Atoi(s)
	}
	nextFloat := func() (float64, error) {
		s, err := next()
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(s, 64)
	}

	n, err := nextInt()
	if err != nil {
		return nil, fmt.Errorf("sem: satellite count: %w", err)
	}
	if _, err := next(); err != nil { // almanac name
		return nil, fmt.Errorf("sem: almanac name: %w", err)
	}
	week, err := nextInt()
	if err != nil {
		return nil, fmt.Errorf("sem: week: %w", err)
	}
	toa, err := nextFloat()
	if err != nil {
		return nil, fmt.Errorf("sem: toa: %w", err)
	}

	out := make([]Ephemeris, 0, n)
	for i := 0; i < n; i++ {
		prn, err := nextInt()
		if err != nil {
			return out, fmt.Errorf("sem: record %d prn: %w", i, err)
		}
		if _, err := nextInt(); err != nil { // svn
			return out, fmt.Errorf("sem: record %d svn: %w", i, err)
		}
		if _, err := nextInt(); err != nil { // ura
			return out, fmt.Errorf("sem: record %d ura: %w", i, err)
		}
		ecc, err := nextFloat()
		if err != nil {
			return out, fmt.Errorf("sem: record %d ecc: %w", i, err)
		}
		deltaI, err := nextFloat()
		if err != nil {
			return out, fmt.Errorf("sem: record %d delta_i: %w", i, err)
		}
		omegaDot, err := nextFloat()
		if err != nil {
			return out, fmt.Errorf("sem: record %d omegadot: %w", i, err)
		}
		sqrta, err := nextFloat()
		if err != nil {
			return out, fmt.Errorf("sem: record %d sqrta: %w", i, err)
		}
		omega0, err := nextFloat()
		if err != nil {
			return out, fmt.Errorf("sem: record %d omega0: %w", i, err)
		}
		w, err := nextFloat()
		if err != nil {
			return out, fmt.Errorf("sem: record %d w: %w", i, err)
		}
		m0, err := nextFloat()
		if err != nil {
			return out, fmt.Errorf("sem: record %d m0: %w", i, err)
		}
		af0, err := nextFloat()
		if err != nil {
			return out, fmt.Errorf("sem: record %d af0: %w", i, err)
		}
		af1, err := nextFloat()
		if err != nil {
			return out, fmt.Errorf("sem: record %d af1: %w", i, err)
		}
		if _, err := nextInt(); err != nil { // health
			return out, fmt.Errorf("sem: record %d health: %w", i, err)
		}
		if _, err := nextInt(); err != nil { // config
			return out, fmt.Errorf("sem: record %d config: %w", i, err)
		}

		out = append(out, Ephemeris{
			PRN:      prn,
			Week:     week,
			Toe:      toa,
			Toc:      toa,
			Ecc:      ecc,
			I0:       (0.30 + deltaI) * math.Pi,
			OmegaDot: omegaDot * math.Pi,
			Sqrta:    sqrta,
			Omega0:   omega0 * math.Pi,
			W:        w * math.Pi,
			M0:       m0 * math.Pi,
			Af0:      af0,
			Af1:      af1,
		})
	}
	return out, nil
}

// rinexFloat converts one 19-character RINEX fixed-point field (which
// uses Fortran's 'D' exponent marker instead of 'E') to a float64.
func rinexFloat(field string) float64 {
	field = strings.ReplaceAll(field, "D", "E")
	field = strings.ReplaceAll(field, "d", "E")
	v, _ := strconv.ParseFloat(strings.TrimSpace(field), 64)
	return v
}

func rinexField(line string, start, width int) string {
	if start >= len(line) {
		return "0"
	}
	end := start + width
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

// ReadRINEXNav parses a RINEX 2.x GPS navigation message file: a
// free-form header terminated by "END OF HEADER", then one satellite
// per 8-line record of 19-character D-exponent fields at fixed offsets.
func ReadRINEXNav(r io.Reader) ([]Ephemeris, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	for sc.Scan() {
		if strings.Contains(sc.Text(), "END OF HEADER") {
			break
		}
	}

	var out []Ephemeris
	lines := make([]string, 0, 8)
	for sc.Scan() {
		lines = append(lines, sc.Text())
		if len(lines) < 8 {
			continue
		}

		prn, _ := strconv.Atoi(strings.TrimSpace(rinexField(lines[0], 0, 2)))

		af0 := rinexFloat(rinexField(lines[0], 22, 19))
		af1 := rinexFloat(rinexField(lines[0], 41, 19))
		af2 := rinexFloat(rinexField(lines[0], 60, 19))

		crs := rinexFloat(rinexField(lines[1], 22, 19))
		deltaN := rinexFloat(rinexField(lines[1], 41, 19))
		m0 := rinexFloat(rinexField(lines[1], 60, 19))

		cuc := rinexFloat(rinexField(lines[2], 3, 19))
		ecc := rinexFloat(rinexField(lines[2], 22, 19))
		cus := rinexFloat(rinexField(lines[2], 41, 19))
		sqrta := rinexFloat(rinexField(lines[2], 60, 19))

		toe := rinexFloat(rinexField(lines[3], 3, 19))
		cic := rinexFloat(rinexField(lines[3], 22, 19))
		omega0 := rinexFloat(rinexField(lines[3], 41, 19))
		cis := rinexFloat(rinexField(lines[3], 60, 19))

		i0 := rinexFloat(rinexField(lines[4], 3, 19))
		crc := rinexFloat(rinexField(lines[4], 22, 19))
		w := rinexFloat(rinexField(lines[4], 41, 19))
		omegaDot := rinexFloat(rinexField(lines[4], 60, 19))

		idot := rinexFloat(rinexField(lines[5], 3, 19))
		week := int(rinexFloat(rinexField(lines[5], 41, 19)))

		tgd := rinexFloat(rinexField(lines[6], 41, 19))

		out = append(out, Ephemeris{
			PRN:      prn,
			Week:     week,
			Toe:      toe,
			Toc:      toe,
			Ecc:      ecc,
			DeltaN:   deltaN,
			I0:       i0,
			OmegaDot: omegaDot,
			Sqrta:    sqrta,
			Omega0:   omega0,
			W:        w,
			M0:       m0,
			Tgd:      tgd,
			Idot:     idot,
			Cuc:      cuc,
			Cus:      cus,
			Crc:      crc,
			Crs:      crs,
			Cic:      cic,
			Cis:      cis,
			Af0:      af0,
			Af1:      af1,
			Af2:      af2,
		})

		lines = lines[:0]
	}
	if err := sc.Err(); err != nil {
		return out, err
	}
	return out, nil
}
