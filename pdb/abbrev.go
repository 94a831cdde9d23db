package pdb

import (
	"github.com/TuftsBCB/seq"
)

var aminoMap = map[string]seq.Residue{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLU": 'E', "GLN": 'Q', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
}

var deoxyMap = map[string]seq.Residue{
	"DA": 'A', "DC": 'C', "DG": 'G', "DT": 'T', "DI": 'I', "DU": 'U',
}

// Every residue name here is treated as water. Rename maps all of them to
// WaterCode.
var waterMap = map[string]bool{
	"HOH": true, "WAT": true, "TP3": true, "TIP": true, "TIP3": true,
	"SOL": true, "H2O": true, "DOD": true, "T3P": true, "SPC": true,
}

// WaterCode is the residue name that water molecules are renamed to.
const WaterCode = "TP3"

// AminoCodes returns the three letter codes of the twenty canonical amino
// acids.
func AminoCodes() []string {
	codes := make([]string, 0, len(aminoMap))
	for code := range aminoMap {
		codes = append(codes, code)
	}
	return codes
}

// IsAmino returns true if code is one of the twenty canonical amino acids.
func IsAmino(code string) bool {
	_, ok := aminoMap[code]
	return ok
}

// IsDeoxy returns true if code is a deoxyribonucleotide.
func IsDeoxy(code string) bool {
	_, ok := deoxyMap[code]
	return ok
}

// IsWater returns true if code names a water molecule.
func IsWater(code string) bool {
	return waterMap[code]
}

func getAmino(threeAbbrev string) seq.Residue {
	if v, ok := aminoMap[threeAbbrev]; ok {
		return v
	}
	return 'X'
}
