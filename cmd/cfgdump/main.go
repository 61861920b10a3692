// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

// cfgdump is a small diagnostic binary: it decodes a configuration file
// with a chosen codec, optionally maps the result into a registered Go
// type, and prints what it found. Styled after cmd/tzgen.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/tigritik/Butylene/codec"
	"github.com/tigritik/Butylene/element"
	"github.com/tigritik/Butylene/mapper"
	"github.com/tigritik/Butylene/match"
	"github.com/tigritik/Butylene/token"
)

var (
	errExit = errors.New("exit")

	inFlag      string
	codecFlag   string
	typeFlag    string
	verboseFlag bool
)

func init() {
	flag.StringVar(&inFlag, "in", "", "input configuration file (required)")
	flag.StringVar(&codecFlag, "codec", "", "codec to use: json, yaml, toml, bson (default: inferred from -in's extension)")
	flag.StringVar(&typeFlag, "type", "", "name of a registered type to map the decoded tree into")
	flag.BoolVar(&verboseFlag, "verbose", false, "enable debug logging")
}

// typeRegistry holds the Go types a caller can name via -type. A real
// embedding application registers its own config root types here (from an
// init func in the same binary); cfgdump ships no built-in types of its
// own.
var typeRegistry = map[string]token.Token{}

// RegisterType makes t available under name for the -type flag.
func RegisterType(name string, t token.Token) {
	typeRegistry[name] = t
}

func main() {
	flag.Parse()
	initLogging()
	if err := run(); err != nil {
		if err == errExit {
			os.Exit(0)
		}
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run() error {
	if inFlag == "" {
		flag.PrintDefaults()
		return errExit
	}
	c, err := resolveCodec()
	if err != nil {
		return err
	}
	f, err := os.Open(inFlag)
	if err != nil {
		return errors.Wrap(err, "cfgdump: opening input file")
	}
	defer f.Close()

	codecLog.Debugf("decoding %s with %T", inFlag, c)
	e, err := c.Decode(f)
	if err != nil {
		return errors.Wrap(err, "cfgdump: decoding input")
	}

	if typeFlag == "" {
		printElement(e)
		return nil
	}

	t, ok := typeRegistry[typeFlag]
	if !ok {
		return errors.Errorf("cfgdump: no type registered under %q", typeFlag)
	}
	source := match.NewSource()
	proc := mapper.NewProcessor(source)
	obj, err := proc.DataFromElement(t, e)
	if err != nil {
		return errors.Wrap(err, "cfgdump: mapping decoded tree")
	}
	printValue(obj)
	return nil
}

func resolveCodec() (codec.Codec, error) {
	ext := codecFlag
	if ext == "" {
		ext = filepath.Ext(inFlag)
	} else if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c, ok := codec.ByExtension(ext)
	if !ok {
		return nil, errors.Wrapf(codec.ErrUnknownExtension, "extension %q (use -codec to override)", ext)
	}
	return c, nil
}

func printElement(e element.Element) {
	color := term.IsTerminal(int(os.Stdout.Fd()))
	printElementIndent(e, 0, color)
}

func printElementIndent(e element.Element, depth int, color bool) {
	prefix := strings.Repeat("  ", depth)
	switch v := e.(type) {
	case nil:
		fmt.Println(prefix + dim("null", color))
	case element.Scalar:
		fmt.Printf("%s%v\n", prefix, v.Value)
	case *element.List:
		for i, item := range v.Items() {
			fmt.Printf("%s- [%d]\n", prefix, i)
			printElementIndent(item, depth+1, color)
		}
	case *element.Node:
		for _, ent := range v.Entries() {
			fmt.Printf("%s%s:\n", prefix, dimKey(ent.Key, color))
			printElementIndent(ent.Value, depth+1, color)
		}
	}
}

func dim(s string, color bool) string {
	if !color {
		return s
	}
	return "\x1b[2m" + s + "\x1b[0m"
}

func dimKey(s string, color bool) string {
	if !color {
		return s
	}
	return "\x1b[1m" + s + "\x1b[0m"
}

func printValue(obj any) {
	fmt.Printf("%#v\n", obj)
}
