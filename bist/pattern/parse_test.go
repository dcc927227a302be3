package pattern

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Parse", func() {
	It("should read decimal and hex entries", func() {
		p, err := Parse(strings.NewReader(
			"# address, data\n" +
				"0x10,0xdeadbeef\n" +
				"\n" +
				"17, 42\n" +
				"0x20,0b101,0x3\n" +
				"0o10,1_000\n"))

		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(Pattern{
			{Address: 0x10, Data: 0xdeadbeef},
			{Address: 17, Data: 42},
			{Address: 0x20, Data: 5, Mask: 3},
			{Address: 8, Data: 1000},
		}))
	})

	It("should report the line of a bad entry", func() {
		_, err := Parse(strings.NewReader("1,2\n\n3,x\n"))

		Expect(err).To(MatchError(ErrSyntax))
		Expect(err.Error()).To(ContainSubstring("line 3"))
	})

	It("should reject lines with too few fields", func() {
		_, err := Parse(strings.NewReader("1\n"))

		Expect(err).To(MatchError(ErrSyntax))
	})

	It("should reject a decimal with a leading zero", func() {
		_, err := Parse(strings.NewReader("010,7\n"))

		Expect(err).To(MatchError(ErrSyntax))
		Expect(err.Error()).To(ContainSubstring("leading zero"))
	})

	It("should reject negative numbers", func() {
		_, err := Parse(strings.NewReader("-1,2\n"))

		Expect(err).To(MatchError(ErrSyntax))
	})

	It("should load a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "pattern.csv")
		Expect(os.WriteFile(path, []byte("0,1\n4,5\n"), 0o644)).To(Succeed())

		p, err := Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(HaveLen(2))
	})

	It("should fail on a missing file", func() {
		_, err := Load(filepath.Join(GinkgoT().TempDir(), "missing.csv"))

		Expect(err).To(HaveOccurred())
	})
})
