// Command fixdump is a thin diagnostic CLI: it decodes a tag=value stream
// from a file or stdin against a loaded FIX dictionary and prints each
// message. Error and MsgType lines are colored; after a framing or decode
// error the offending bytes follow as a plain offset-annotated hex/ASCII
// dump. It carries no session or business logic; it exists to demonstrate
// the library the way cmd/actisense demonstrates the teacher's decoder.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/fixwire/fixengine/dictionary"
	"github.com/fixwire/fixengine/internal/bytesutil"
	"github.com/fixwire/fixengine/tagvalue"
	"github.com/fixwire/fixengine/transport"
)

func main() {
	dictPath := flag.String("dict", "", "path to a FIX repository directory (Fields.xml, Messages.xml, ...)")
	beginString := flag.String("begin-string", "FIX.4.4", "BeginString of the dictionary variant to load")
	inputPath := flag.String("in", "", "path to a file of tag=value frames (reads stdin if empty)")
	rawOnly := flag.Bool("raw-only", false, "print only the raw frame dump, skip field decoding")
	flag.Parse()

	if *dictPath == "" {
		log.Fatal("# missing -dict path\n")
	}

	dict, err := dictionary.Load(os.DirFS(*dictPath), *beginString)
	if err != nil {
		log.Fatalf("# failed to load dictionary: %v\n", err)
	}
	fmt.Printf("# loaded dictionary %s: %d messages, %d fields\n", *beginString, len(dict.Messages()), len(dict.Fields()))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	in := os.Stdin
	if *inputPath != "" {
		f, err := os.Open(*inputPath)
		if err != nil {
			log.Fatalf("# failed to open %s: %v\n", *inputPath, err)
		}
		defer f.Close()
		in = f
	}

	stream := transport.NewStream(in, tagvalue.DefaultConfig())
	dec := tagvalue.NewDecoder(dict, tagvalue.DefaultConfig())

	errColor := color.New(color.FgRed, color.Bold)
	okColor := color.New(color.FgGreen)

	for {
		frame, err := stream.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				fmt.Println("# end of input")
				return
			}
			errColor.Printf("# framing error: %v\n", err)
			fmt.Print(bytesutil.Dump(stream.Buffered()))
			stream.Resync()
			continue
		}

		if *rawOnly {
			fmt.Println(bytesutil.EscapeControl(frame))
			continue
		}

		msg, err := dec.Decode(frame)
		if err != nil {
			errColor.Printf("# decode error: %v\n", err)
			fmt.Print(bytesutil.Dump(frame))
			continue
		}
		okColor.Printf("# MsgType=%s\n", msg.MsgType())
		for _, tag := range msg.Tags() {
			raw, _ := msg.GetRaw(tag)
			fmt.Printf("  %5d = %s\n", tag, bytesutil.EscapeControl(raw))
		}
	}
}
