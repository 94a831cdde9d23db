/*
Package vocab provides the residue vocabulary that PDB files are checked
against: the set of three letter codes Rosetta can read at all, and the subset
of those that are read without any extra configuration ("on by default").

A Table can be built from explicit lists, from a Rosetta database (see
LoadDatabase), or from plain lists of codes (see ReadCodes). The nucleic acid
and water codes in FixedCodes are always both recognized and enabled.
*/
package vocab
