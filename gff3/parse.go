// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gff3

import (
	"strconv"
	"strings"

	"github.com/kortschak/seqtools/feature"
)

type parser struct {
	idx  *feature.Index
	opts Options
	line int

	warnings []Warning

	refSeqRanges map[string][2]int

	inFasta   bool
	fastaName string
	fastaBuf  strings.Builder
	fasta     map[string]string
}

func (p *parser) warn(msg string) {
	p.warnings = append(p.warnings, Warning{Line: p.line, Msg: msg})
}

// Fasta returns the sequences collected from an embedded "##FASTA"
// section, keyed by sequence ID, once Parse has returned.
func (p *parser) Fasta() map[string]string { return p.fasta }

func (p *parser) fastaLine(line string) {
	if strings.HasPrefix(line, ">") {
		p.flushFasta()
		p.fastaName = strings.Fields(strings.TrimPrefix(line, ">"))[0]
		return
	}
	p.fastaBuf.WriteString(strings.TrimSpace(line))
}

func (p *parser) flushFasta() {
	if p.fastaName == "" {
		return
	}
	if p.fasta == nil {
		p.fasta = make(map[string]string)
	}
	p.fasta[p.fastaName] = p.fastaBuf.String()
	p.fastaName = ""
	p.fastaBuf.Reset()
}

// sequenceRegion records a "##sequence-region seqid start end" directive
// in Result.SequenceRegions (spec.md §4.4). cmd/gffcheck reports how
// many were read; nothing checks feature ranges against these bounds.
func (p *parser) sequenceRegion(line string) {
	f := strings.Fields(line)
	if len(f) != 4 {
		p.warn("malformed ##sequence-region directive")
		return
	}
	start, err1 := strconv.Atoi(f[2])
	end, err2 := strconv.Atoi(f[3])
	if err1 != nil || err2 != nil {
		p.warn("malformed ##sequence-region bounds")
		return
	}
	p.refSeqRanges[f[1]] = [2]int{start, end}
}

// record parses one 9-column GFF3 feature line and, on success, attaches
// a Feature (and its owning FeatureSeq, when applicable) to idx.
func (p *parser) record(line string) {
	cols := strings.Split(line, "\t")
	if len(cols) != 9 {
		p.warn("expected 9 columns, got " + strconv.Itoa(len(cols)))
		return
	}
	seqid, source, soTerm, startStr, endStr, scoreStr, strandStr, phaseStr, attrStr := cols[0], cols[1], cols[2], cols[3], cols[4], cols[5], cols[6], cols[7], cols[8]

	typ, ok := soType[soTerm]
	if !ok {
		p.warn("unsupported feature type " + soTerm)
		return
	}

	start, err := strconv.Atoi(startStr)
	if err != nil {
		p.warn("invalid start coordinate " + startStr)
		return
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		p.warn("invalid end coordinate " + endStr)
		return
	}
	if source == "." {
		source = p.opts.DefaultSource
	}

	if strandStr != "+" && strandStr != "-" && strandStr != "." && strandStr != "?" {
		p.warn("invalid strand " + strandStr)
	}
	refStrand := parseStrand(strandStr)

	var score float64
	var hasScore bool
	if scoreStr != "." {
		score, err = strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			p.warn("invalid score " + scoreStr)
		} else {
			hasScore = true
		}
	}

	phase := feature.PhaseUnset
	if phaseStr != "." {
		n, err := strconv.Atoi(phaseStr)
		if err != nil || n < 0 || n > 2 {
			p.warn("invalid phase " + phaseStr)
		} else {
			phase = feature.Phase(n)
		}
	}

	attrs := parseAttributes(attrStr)

	args := feature.FeatureArgs{
		Type:      typ,
		RefName:   seqid,
		RefRange:  feature.Range{Min: start, Max: end},
		RefStrand: refStrand,
		Score:     score,
		HasScore:  hasScore,
		Phase:     phase,
		Source:    source,
		IDTag:     attrs["ID"],
	}
	if note, ok := attrs["Note"]; ok {
		args.Description = note
	} else if desc, ok := attrs["description"]; ok {
		args.Description = desc
	}

	if parent, ok := attrs["Parent"]; ok {
		args.ParentIDTag = parent
	}

	var matchRange feature.Range
	var matchStrand feature.Strand
	var targetName string
	hasTarget := false
	if tgt, ok := attrs["Target"]; ok {
		name, mn, mx, strand, ok := parseTarget(tgt)
		if !ok {
			p.warn("malformed Target attribute " + tgt)
		} else {
			targetName, matchRange, matchStrand, hasTarget = name, feature.Range{Min: mn, Max: mx}, strand, true
		}
	}

	switch {
	case typ == feature.TypeMatch:
		if !hasTarget {
			p.warn("match record missing Target attribute")
			return
		}
		if matchStrand == feature.StrandNone {
			matchStrand = refStrand
		}
		args.MatchName = targetName
		args.MatchRange = matchRange
		args.MatchStrand = matchStrand
		args.HasMatch = true
		args.SeqIDTag = attrs["ID"]
		if args.SeqIDTag == "" {
			args.SeqIDTag = targetName
		}
		args.SeqStrand = matchStrand

		gapStr, ok := attrs["Gap"]
		if !ok {
			gapStr, ok = attrs["Gaps"]
		}
		if ok {
			args.Gaps = p.parseGap(gapStr, args.RefRange, matchRange, refStrand, matchStrand, soTerm)
		}

	case typ == feature.TypeTranscript:
		if seqAttr, ok := attrs["sequence"]; ok {
			args.MatchName = seqAttr
		}
		args.SeqIDTag = attrs["ID"]
		args.SeqStrand = refStrand

	case feature.IsChildType(typ):
		if parent, ok := attrs["Parent"]; ok {
			args.MatchName = parent
		}

	default:
		if hasTarget {
			args.MatchName = targetName
			args.MatchRange = matchRange
			args.MatchStrand = matchStrand
			args.HasMatch = true
		}
	}

	if _, err := p.idx.CreateFeature(args); err != nil {
		p.warn(err.Error())
	}
}

// parseStrand maps a GFF3 column-7 strand character to a feature.Strand.
// "." (not stranded) and "?" (unknown) both map to StrandNone per the
// GFF3 spec; record warns separately when s is none of +, -, ., ? so a
// genuinely malformed value isn't silently folded into StrandNone.
func parseStrand(s string) feature.Strand {
	switch s {
	case "+":
		return feature.StrandForward
	case "-":
		return feature.StrandReverse
	default:
		return feature.StrandNone
	}
}

// parseTarget parses a GFF3 "Target=name start end [strand]" attribute
// value.
func parseTarget(v string) (name string, start, end int, strand feature.Strand, ok bool) {
	f := strings.Fields(v)
	if len(f) < 3 {
		return "", 0, 0, feature.StrandNone, false
	}
	start, err1 := strconv.Atoi(f[1])
	end, err2 := strconv.Atoi(f[2])
	if err1 != nil || err2 != nil {
		return "", 0, 0, feature.StrandNone, false
	}
	if len(f) >= 4 {
		strand = parseStrand(f[3])
	}
	return f[0], start, end, strand, true
}

// parseAttributes splits a GFF3 column-9 attribute string into a flat
// map, percent-decoding values as it goes. Multi-valued attributes
// (e.g. repeated "Parent=") are not supported; later occurrences win.
func parseAttributes(s string) map[string]string {
	out := make(map[string]string)
	for _, kv := range strings.Split(s, ";") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		i := strings.IndexByte(kv, '=')
		if i < 0 {
			continue
		}
		out[kv[:i]] = percentDecode(kv[i+1:])
	}
	return out
}

func percentDecode(s string) string {
	if !strings.ContainsRune(s, '%') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			if n, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(n))
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
