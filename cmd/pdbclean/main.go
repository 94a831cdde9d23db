package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/TuftsBCB/seq"

	"github.com/TuftsBCB/pdbclean/clean"
	"github.com/TuftsBCB/pdbclean/cmd/util"
	"github.com/TuftsBCB/pdbclean/fasta"
	"github.com/TuftsBCB/pdbclean/pdb"
	"github.com/TuftsBCB/pdbclean/vocab"
)

var (
	flagConfig           = ""
	flagReplace          = true
	flagRemoveHetatm     = false
	flagRemoveWaters     = true
	flagRemoveAlternates = false
	flagOccupancy        = true
	flagCheck            = true
	flagDatabase         = ""
	flagTypeSet          = vocab.DefaultTypeSet
	flagRecognized       = ""
	flagEnabled          = ""
	flagVerify           = false
	flagFasta            = ""
)

func init() {
	flag.StringVar(&flagConfig, "config", flagConfig,
		"A YAML file with cleaning settings. Flags given on the command line\n"+
			"override the file.")
	flag.BoolVar(&flagReplace, "replace", flagReplace,
		"Replace known unrecognized residue and atom names, and normalize\n"+
			"water names.")
	flag.BoolVar(&flagRemoveHetatm, "remove-hetatm", flagRemoveHetatm,
		"Remove all HETATM residues.")
	flag.BoolVar(&flagRemoveWaters, "remove-waters", flagRemoveWaters,
		"Remove all waters.")
	flag.BoolVar(&flagRemoveAlternates, "remove-alternates",
		flagRemoveAlternates,
		"Keep only the first alternate location, and renumber chains with\n"+
			"insertions from 1.")
	flag.BoolVar(&flagOccupancy, "occupancy", flagOccupancy,
		"Change all occupancies to 1.")
	flag.BoolVar(&flagCheck, "check", flagCheck,
		"Check for residues Rosetta doesn't recognize or doesn't read by\n"+
			"default, and write a *_rosetta_check_log.txt file.")
	flag.StringVar(&flagDatabase, "database", flagDatabase,
		"A Rosetta database directory to read residue types from.")
	flag.StringVar(&flagTypeSet, "type-set", flagTypeSet,
		"The residue type set to use in the Rosetta database.")
	flag.StringVar(&flagRecognized, "recognized", flagRecognized,
		"A file listing extra residue codes that are recognized but off by\n"+
			"default, one per line.")
	flag.StringVar(&flagEnabled, "enabled", flagEnabled,
		"A file listing extra residue codes that are on by default,\n"+
			"one per line.")
	flag.BoolVar(&flagVerify, "verify", flagVerify,
		"After cleaning, compute the carbon-alpha RMSD between each input\n"+
			"and its cleaned copy.")
	flag.StringVar(&flagFasta, "fasta", flagFasta,
		"When set, the amino acid sequence of every chain in every cleaned\n"+
			"file is written to this FASTA file.")
}

func main() {
	util.FlagParse("(pdb-file | list-file)",
		"Cleans a PDB file, or every PDB file listed in a .txt file, for\n"+
			"use with Rosetta. Cleaned files are written to a CLEANED\n"+
			"directory next to the input.")
	util.AssertNArg(1)

	conf := clean.DefaultConfig()
	if len(flagConfig) > 0 {
		var err error
		conf, err = clean.LoadConfig(flagConfig)
		util.Assert(err)
	}
	applyFlags(&conf)

	table, err := conf.Vocab()
	util.Assert(err, "Could not load residue vocabulary")
	if bad := table.Inconsistent(); len(bad) > 0 {
		util.Warnf("WARNING: on by default but not recognized: %s",
			strings.Join(bad, " "))
	}

	sess := clean.NewSession(table, conf)
	sess.Log = util.Logger()
	res, err := sess.Run(util.Arg(0))
	util.Assert(err, "Could not clean '%s'", util.Arg(0))

	for _, cleaned := range res.Cleaned {
		fmt.Println(cleaned.Output)
	}
	for _, failure := range res.Failures {
		util.Warnf("ERROR: %s", failure)
	}
	if flagVerify {
		verify(sess, res.Cleaned)
	}
	if len(flagFasta) > 0 {
		writeSequences(flagFasta, res.Cleaned)
	}
	if conf.CheckUnrecognized {
		summarize(sess, res)
	}
	if len(res.Failures) > 0 {
		os.Exit(1)
	}
}

func applyFlags(conf *clean.Config) {
	set := util.FlagSet()
	if set["replace"] {
		conf.ReplaceResiduesAtoms = flagReplace
	}
	if set["remove-hetatm"] {
		conf.RemoveHetatm = flagRemoveHetatm
	}
	if set["remove-waters"] {
		conf.RemoveWaters = flagRemoveWaters
	}
	if set["remove-alternates"] {
		conf.RemoveAlternates = flagRemoveAlternates
	}
	if set["occupancy"] {
		conf.NormalizeOccupancy = flagOccupancy
	}
	if set["check"] {
		conf.CheckUnrecognized = flagCheck
	}
	if set["database"] {
		conf.Vocabulary.Database = flagDatabase
	}
	if set["type-set"] {
		conf.Vocabulary.TypeSet = flagTypeSet
	}
	if len(flagRecognized) > 0 {
		conf.Vocabulary.Recognized = append(conf.Vocabulary.Recognized,
			readCodes(flagRecognized)...)
	}
	if len(flagEnabled) > 0 {
		conf.Vocabulary.Enabled = append(conf.Vocabulary.Enabled,
			readCodes(flagEnabled)...)
	}
}

func readCodes(path string) []string {
	f, err := os.Open(path)
	util.Assert(err, "Could not open '%s'", path)
	defer f.Close()

	codes, err := vocab.ReadCodes(f)
	util.Assert(err, "Could not read residue codes from '%s'", path)
	return codes
}

// verify makes sure writing didn't move or lose any backbone atoms. The
// input is transformed again in memory, since renaming can turn HETATM
// residues (like MSE) into ATOM records and collapsing alternates can merge
// residues.
func verify(sess *clean.Session, cleaned []clean.CleanedFile) {
	for _, c := range cleaned {
		before, err := clean.ReadEntry(c.Input)
		if util.Warning(err, "Could not verify '%s'", c.Input) {
			continue
		}
		sess.Transform(before)
		after, err := pdb.ReadPDB(c.Output)
		if util.Warning(err, "Could not verify '%s'", c.Output) {
			continue
		}
		rmsd, err := pdb.CaRMSD(before, after)
		if util.Warning(err, "Could not verify '%s'", c.Output) {
			continue
		}
		fmt.Printf("%s\tCA RMSD %0.4f\n", c.Output, rmsd)
		for _, chain := range after.Chains() {
			util.Verbosef("> %s chain %c\n%s", after.Name(), chain,
				string(after.Sequence(chain)))
		}
	}
}

// writeSequences exports the chain sequences of the cleaned files.
func writeSequences(fp string, cleaned []clean.CleanedFile) {
	var seqs []seq.Sequence
	for _, c := range cleaned {
		e, err := pdb.ReadPDB(c.Output)
		if util.Warning(err, "Could not read '%s'", c.Output) {
			continue
		}
		seqs = append(seqs, e.Sequences()...)
	}
	util.Assert(fasta.WriteFile(fp, seqs), "Could not write '%s'", fp)
	util.Verbosef("Wrote %d sequences to %s", len(seqs), fp)
}

func summarize(sess *clean.Session, res *clean.RunResult) {
	if codes := sess.Unrecognized(); len(codes) > 0 {
		util.Warnf("Rosetta may be unable to read these residues: %s",
			strings.Join(codes, ":"))
		util.Warnf("Set the -ignore_unrecognized_res option to skip them " +
			"when loading.")
	}
	if codes := sess.EnableCandidates(); len(codes) > 0 {
		util.Warnf("These residues are normally off by default and must be "+
			"enabled before loading: %s", strings.Join(codes, ":"))
	}
	if len(res.Report) > 0 {
		util.Warnf("Please see %s", res.Report)
	}
}
