package catalog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// OpenFileAndDecode reads a semicolon separated export of the paper form.
func OpenFileAndDecode(path string) (dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open file %s: %v", path, err)
	}

	defer file.Close()

	return Decode(file)
}

// Decode parses r as a semicolon CSV with a header row. Spreadsheet exports
// from the municipal offices are Windows-1252; a leading UTF-8 BOM switches
// decoding off. Every column is kept as text, so "NA" stays an answer.
func Decode(r io.Reader) (dataframe.DataFrame, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br

	head, _ := br.Peek(len(utf8BOM))
	if bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	} else {
		src = charmap.Windows1252.NewDecoder().Reader(br)
	}

	df := dataframe.ReadCSV(src,
		dataframe.WithDelimiter(';'),
		dataframe.WithLazyQuotes(true),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.NaNValues(nil),
	)
	if err := df.Error(); err != nil {
		return dataframe.DataFrame{}, err
	}
	// If dataframe is empty return
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("dataframe is empty")
	}

	return df, nil
}
