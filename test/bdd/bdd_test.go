package bdd

import (
	"os"
	"testing"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/garmentflow/test/bdd/steps"
	"github.com/andrescamacho/garmentflow/test/helpers"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/fabric", "features/cutting", "features/pipeline", "features/subcontract", "features/dispatch", "features/properties"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	steps.InitializeProductionScenario(sc)
}

func TestMain(m *testing.M) {
	// One migrated in-memory database for every scenario; tables are truncated between them
	if err := helpers.InitializeSharedTestDB(); err != nil {
		panic("Failed to initialize shared test database: " + err.Error())
	}
	code := m.Run()
	helpers.CloseSharedTestDB()
	os.Exit(code)
}
