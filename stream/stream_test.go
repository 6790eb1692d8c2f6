package stream_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/stream"
)

var _ = Describe("Read", func() {
	It("should read addresses in order", func() {
		addrs, err := stream.Read(strings.NewReader("16916\n62493\n  30198 \n"))

		Expect(err).NotTo(HaveOccurred())
		Expect(addrs).To(Equal([]uint64{16916, 62493, 30198}))
	})

	It("should skip blank lines", func() {
		addrs, err := stream.Read(strings.NewReader("1\n\n2\r\n\n"))

		Expect(err).NotTo(HaveOccurred())
		Expect(addrs).To(Equal([]uint64{1, 2}))
	})

	It("should return an empty slice for an empty stream", func() {
		addrs, err := stream.Read(strings.NewReader(""))

		Expect(err).NotTo(HaveOccurred())
		Expect(addrs).To(BeEmpty())
	})

	DescribeTable("should reject lines that are not addresses",
		func(input string, line int) {
			_, err := stream.Read(strings.NewReader(input))

			var parseErr *stream.ParseError
			Expect(errors.As(err, &parseErr)).To(BeTrue())
			Expect(parseErr.Line).To(Equal(line))
		},
		Entry("text", "1\nabc\n", 2),
		Entry("negative", "-5\n", 1),
		Entry("float", "1\n2\n3.5\n", 3),
	)

	It("should read files", func() {
		dir, err := os.MkdirTemp("", "stream")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		path := filepath.Join(dir, "addresses.txt")
		Expect(os.WriteFile(path, []byte("512\n513\n"), 0o644)).To(Succeed())

		addrs, err := stream.ReadFile(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(addrs).To(Equal([]uint64{512, 513}))
	})

	It("should fail on missing files", func() {
		_, err := stream.ReadFile(filepath.Join(os.TempDir(), "no-such-file-vmsim"))

		Expect(err).To(HaveOccurred())
	})
})
