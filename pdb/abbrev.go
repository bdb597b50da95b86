package pdb

// aminoMap goes from three letter residue names to one letter codes.
// Anything we do not know becomes 'X'.
var aminoMap = map[string]byte{
	"UNK": 'X',
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLU": 'E', "GLN": 'Q', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
	"ASX": 'B', "GLX": 'Z',
	"SEC": 'U', "PYL": 'O',
}

// OneLetter converts a residue name like "ALA" to 'A'.
func OneLetter(resName string) byte {
	if c, ok := aminoMap[resName]; ok {
		return c
	}
	return 'X'
}
