package thermal_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestThermal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Thermal Suite")
}
