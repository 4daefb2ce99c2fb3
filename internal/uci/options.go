package uci

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type optionType string

const (
	optionSpin  optionType = "spin"
	optionCheck optionType = "check"
)

// option 对外公布的引擎选项
type option struct {
	name     string
	typ      optionType
	def      string
	min, max int
	apply    func(p *Protocol, o option, value string) error
}

func (o option) String() string {
	s := fmt.Sprintf("option name %s type %s default %s", o.name, o.typ, o.def)
	if o.typ == optionSpin {
		s += fmt.Sprintf(" min %d max %d", o.min, o.max)
	}
	return s
}

func (o option) spin(value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("option %s: %q is not a number", o.name, value)
	}
	if v < o.min || v > o.max {
		return 0, fmt.Errorf("option %s: %d out of range [%d, %d]", o.name, v, o.min, o.max)
	}
	return v, nil
}

func (o option) check(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("option %s: %q is not true or false", o.name, value)
}

func defaultOptions(hashMB int, overhead time.Duration) []option {
	return []option{
		{
			name: "Hash", typ: optionSpin, def: strconv.Itoa(hashMB), min: 1, max: 1024,
			apply: func(p *Protocol, o option, value string) error {
				v, err := o.spin(value)
				if err != nil {
					return err
				}
				p.eng.HashMB = v
				return nil
			},
		},
		{
			// 单线程搜索，只接受 1
			name: "Threads", typ: optionSpin, def: "1", min: 1, max: 1,
			apply: func(p *Protocol, o option, value string) error {
				_, err := o.spin(value)
				return err
			},
		},
		{
			name: "MoveOverhead", typ: optionSpin, def: strconv.Itoa(int(overhead.Milliseconds())), min: 0, max: 5000,
			apply: func(p *Protocol, o option, value string) error {
				v, err := o.spin(value)
				if err != nil {
					return err
				}
				p.eng.MoveOverhead = time.Duration(v) * time.Millisecond
				return nil
			},
		},
		{
			name: "UCI_AnalyseMode", typ: optionCheck, def: "false",
			apply: func(p *Protocol, o option, value string) error {
				v, err := o.check(value)
				if err != nil {
					return err
				}
				p.analyse = v
				return nil
			},
		},
	}
}

func (p *Protocol) findOption(name string) (option, bool) {
	for _, o := range p.options {
		if strings.EqualFold(o.name, name) {
			return o, true
		}
	}
	return option{}, false
}
