package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/pcbtools/gerbcore"
	"github.com/pcbtools/gerbcore/excellon"
	"github.com/pcbtools/gerbcore/gerberx"
	"github.com/pcbtools/gerbcore/image"
	"github.com/pcbtools/gerbcore/ipc356a"
	"github.com/pcbtools/gerbcore/search"
	"github.com/pcbtools/gerbcore/sniffer"
	"github.com/pcbtools/gerbcore/writer"
	"github.com/spf13/cobra"
)

func prettyPrint(buff []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, buff, "", "\t"); err != nil {
		return string(buff)
	}
	return out.String()
}

func loadImage(path string) (*image.Image, sniffer.FileType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sniffer.Unknown, err
	}
	result := sniffer.Sniff(data, "")
	switch result.Type {
	case sniffer.GerberRS274X:
		img, err := gerberx.Parse(path, nil)
		return img, result.Type, err
	case sniffer.Excellon:
		img, err := excellon.Parse(path, nil)
		return img, result.Type, err
	case sniffer.IPCD356A:
		img, err := ipc356a.Parse(path, nil)
		return img, result.Type, err
	default:
		return nil, result.Type, gerbcore.ErrUnrecognizedFormat
	}
}

func runSniff(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("reading %s: %v", args[0], err)
	}
	result := sniffer.Sniff(data, "")
	fmt.Printf("%s: %s\n", args[0], result.Type)
	for t, s := range result.Scores {
		fmt.Printf("  %-16s %d\n", t, s)
	}
}

func runParse(cmd *cobra.Command, args []string) {
	img, kind, err := loadImage(args[0])
	if err != nil {
		log.Fatalf("parsing %s as %s: %v", args[0], kind, err)
	}
	out, _ := json.Marshal(img)
	fmt.Println(prettyPrint(out))
}

func runAnnotate(cmd *cobra.Command, args []string) {
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	gerber, _, err := loadImage(args[0])
	if err != nil {
		log.Fatalf("parsing %s: %v", args[0], err)
	}
	ipc, _, err := loadImage(args[1])
	if err != nil {
		log.Fatalf("parsing %s: %v", args[1], err)
	}
	n := search.AnnotateFromIPC(gerber, ipc, overwrite)
	fmt.Printf("annotated %d nets\n", n)
}

func runWrite(cmd *cobra.Command, args []string) {
	img, kind, err := loadImage(args[0])
	if err != nil {
		log.Fatalf("parsing %s: %v", args[0], err)
	}
	out, err := os.Create(args[1])
	if err != nil {
		log.Fatalf("creating %s: %v", args[1], err)
	}
	defer out.Close()

	if kind == sniffer.Excellon {
		if err := writer.WriteExcellon(out, img); err != nil {
			log.Fatalf("writing %s: %v", args[1], err)
		}
		return
	}
	std, _ := cmd.Flags().GetInt("std")
	opts := &writer.Options{StdVersion: writer.StdVersion(std)}
	if err := writer.Write(out, img, opts); err != nil {
		log.Fatalf("writing %s: %v", args[1], err)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "gerbcore",
		Short: "A Gerber/Excellon/IPC-D-356A ingestion tool",
		Long:  "Sniffs, parses, annotates, and re-emits PCB fabrication files",
	}

	sniffCmd := &cobra.Command{
		Use:   "sniff <file>",
		Short: "Identify a file's format",
		Args:  cobra.ExactArgs(1),
		Run:   runSniff,
	}

	parseCmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a file and dump its image as JSON",
		Args:  cobra.ExactArgs(1),
		Run:   runParse,
	}

	annotateCmd := &cobra.Command{
		Use:   "annotate <gerber> <ipc>",
		Short: "Annotate a Gerber image's test points from an IPC-D-356A netlist",
		Args:  cobra.ExactArgs(2),
		Run:   runAnnotate,
	}
	annotateCmd.Flags().Bool("overwrite", false, "overwrite attributes already present")

	writeCmd := &cobra.Command{
		Use:   "write <in> <out>",
		Short: "Parse a file and re-emit it (RS-274-X/X2 or Excellon)",
		Args:  cobra.ExactArgs(2),
		Run:   runWrite,
	}
	writeCmd.Flags().Int("std", 2, "RS-274-X standard version: 1 or 2")

	rootCmd.AddCommand(sniffCmd, parseCmd, annotateCmd, writeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
