package helpers

type File uint
type Rank uint

type FileRank struct {
	File File
	Rank Rank
}

type Player uint

const (
	White Player = iota
	Black
)

var _playerStrings = [2]string{
	"white", "black",
}

func (p Player) String() string {
	return _playerStrings[p]
}

func (p Player) Other() Player {
	return 1 - p
}

// Sign is +1 for white and -1 for black. Scores are white-positive, so
// multiplying by the mover's sign gives a mover-relative score.
func (p Player) Sign() int {
	if p == White {
		return 1
	}
	return -1
}

func PlayerFromString(c string) (Player, Error) {
	switch c {
	case "b", "black":
		return Black, NilError
	case "w", "white":
		return White, NilError
	default:
		return White, Errorf("invalid player %v", c)
	}
}

type Piece uint

const (
	XX Piece = iota
	WR
	WN
	WB
	WK
	WQ
	WP
	BR
	BN
	BB
	BK
	BQ
	BP
)

type PieceType uint

const (
	Rook PieceType = iota
	Knight
	Bishop
	King
	Queen
	Pawn
	InvalidPiece
)

var AllPieceTypes = []PieceType{Rook, Knight, Bishop, King, Queen, Pawn}

func (p PieceType) String() string {
	return [7]string{
		"r", "n", "b", "k", "q", "p", "?",
	}[p]
}

func (p PieceType) IsValid() bool {
	return p >= Rook && p <= Pawn
}

func PieceTypeFromString(s string) PieceType {
	switch s {
	case "r":
		return Rook
	case "n":
		return Knight
	case "b":
		return Bishop
	case "k":
		return King
	case "q":
		return Queen
	case "p":
		return Pawn
	default:
		return InvalidPiece
	}
}

var PieceForPlayer [2][7]Piece = func() [2][7]Piece {
	result := [2][7]Piece{}
	for _, t := range AllPieceTypes {
		result[White][t] = WR + Piece(t)
		result[Black][t] = BR + Piece(t)
	}
	return result
}()

func NewPiece(player Player, t PieceType) Piece {
	if !t.IsValid() {
		return XX
	}
	return PieceForPlayer[player][t]
}

func (p Piece) PieceType() PieceType {
	switch {
	case p.IsWhite():
		return PieceType(p - WR)
	case p.IsBlack():
		return PieceType(p - BR)
	default:
		return InvalidPiece
	}
}

func (p Piece) Player() Player {
	if p < BR {
		return White
	}
	return Black
}

func (p Piece) IsWhite() bool {
	return p <= WP && p >= WR
}

func (p Piece) IsBlack() bool {
	return p <= BP && p >= BR
}

func (p Piece) IsEmpty() bool {
	return p == XX
}

// Mirror swaps the colour of the piece.
func (p Piece) Mirror() Piece {
	if p.IsEmpty() {
		return XX
	}
	return NewPiece(p.Player().Other(), p.PieceType())
}

func (p Piece) String() string {
	return []string{
		" ", "R", "N", "B", "K", "Q", "P", "r", "n", "b", "k", "q", "p",
	}[p]
}

func (p PieceType) Unicode() string {
	return []string{
		"♜", "♞", "♝", "♚", "♛", "♟", " ",
	}[p]
}

func (f File) String() string {
	return [8]string{
		"a", "b", "c", "d", "e", "f", "g", "h",
	}[f]
}
func (r Rank) String() string {
	return [8]string{
		"1", "2", "3", "4", "5", "6", "7", "8",
	}[r]
}

func (v FileRank) String() string {
	return v.File.String() + v.Rank.String()
}

func RankFromChar(c byte) (Rank, Error) {
	rank := int(c) - '1'
	if rank < 0 || rank >= 8 {
		return 0, Errorf("rank invalid %v", string(c))
	}
	return Rank(rank), NilError
}

func FileFromChar(c byte) (File, Error) {
	file := int(c) - 'a'
	if file < 0 || file >= 8 {
		return 0, Errorf("file invalid %v", string(c))
	}
	return File(file), NilError
}

func FileRankFromString(s string) (FileRank, Error) {
	if len(s) != 2 {
		return FileRank{}, Errorf("invalid location %v", s)
	}

	file, fileErr := FileFromChar(s[0])
	rank, rankErr := RankFromChar(s[1])

	if !IsNil(fileErr) || !IsNil(rankErr) {
		return FileRank{}, Join(Errorf("invalid location %v", s), fileErr, rankErr)
	}

	return FileRank{file, rank}, NilError
}

func IndexFromFileRank(location FileRank) int {
	return int(location.Rank)*8 + int(location.File)
}

func FileRankFromIndex(index int) FileRank {
	f := File(index & 0b111)
	r := Rank(index >> 3)
	return FileRank{f, r}
}

func StringFromBoardIndex(index int) string {
	return FileRankFromIndex(index).String()
}

func BoardIndexFromString(s string) (int, Error) {
	location, err := FileRankFromString(s)
	if !IsNil(err) {
		return 0, err
	}
	return IndexFromFileRank(location), NilError
}

// BoardArray is indexed by rank*8 + file, so a1 is 0 and h8 is 63.
type BoardArray [64]Piece

// Mirror flips the board vertically and swaps the colour of every piece.
func (b BoardArray) Mirror() BoardArray {
	result := BoardArray{}
	for i, piece := range b {
		location := FileRankFromIndex(i)
		location.Rank = 7 - location.Rank
		result[IndexFromFileRank(location)] = piece.Mirror()
	}
	return result
}

func (b BoardArray) String() string {
	result := ""
	for rank := 7; rank >= 0; rank-- {
		for _, p := range b[rank*8 : (rank+1)*8] {
			if p.IsEmpty() {
				result += "."
			} else {
				result += p.String()
			}
		}
		if rank != 0 {
			result += "\n"
		}
	}
	return result
}

const _hintForeground = "\033[38;5;244m"
const _whiteForeground = "\033[38;5;255m"
const _blackForeground = "\033[38;5;232m"
const _whiteBackground = "\033[48;5;250m"
const _blackBackground = "\033[48;5;243m"
const _resetColors = "\x1b[0m"

// Unicode renders the board for a terminal. Highlighted squares get a marker.
func (b BoardArray) Unicode(highlights ...int) string {
	result := "  "
	for file := 0; file < 8; file++ {
		result += _hintForeground + " " + File(file).String() + " " + _resetColors
	}
	result += "\n"

	for rank := 7; rank >= 0; rank-- {
		result += _hintForeground + Rank(rank).String() + " " + _resetColors
		for file := 0; file < 8; file++ {
			index := rank*8 + file
			piece := b[index]

			if (file+rank)%2 == 1 {
				result += _whiteBackground
			} else {
				result += _blackBackground
			}
			if piece.IsWhite() {
				result += _whiteForeground
			} else {
				result += _blackForeground
			}

			glyph := piece.PieceType().Unicode()
			if piece.IsEmpty() && Contains(highlights, index) {
				glyph = "·"
			}
			result += " " + glyph + " " + _resetColors
		}
		result += "\n"
	}

	return result
}
