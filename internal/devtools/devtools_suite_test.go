package devtools_test

import (
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDevtools(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Devtools Suite")
}

var _ = BeforeSuite(func() {
	gin.SetMode(gin.ReleaseMode)
})
