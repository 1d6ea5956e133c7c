package bootstrapper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
)

// Executor is the common base interface for all provisioning steps.
type Executor interface {
	// Execute performs the step's main operation
	Execute(ctx context.Context) error

	// IsCompleted checks if the step has already been completed
	IsCompleted(ctx context.Context) bool

	// GetName returns the step name
	GetName() string
}

// StepExecutor extends Executor with a precondition check; only bootstrap
// steps implement it.
type StepExecutor interface {
	Executor

	// Validate validates preconditions before execution
	Validate(ctx context.Context) error
}

// ExecutionResult represents the result of a bootstrap or teardown run
type ExecutionResult struct {
	RunID       string        `json:"run_id"`
	Success     bool          `json:"success"`
	StepCount   int           `json:"step_count"`
	Duration    time.Duration `json:"duration"`
	StepResults []StepResult  `json:"step_results"`
	Error       string        `json:"error,omitempty"`
}

// StepResult represents the result of a single step
type StepResult struct {
	StepName string        `json:"step_name"`
	Success  bool          `json:"success"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// BaseExecutor provides common functionality for bootstrap and teardown runs
type BaseExecutor struct {
	config *config.Config
	logger *logrus.Logger
}

// NewBaseExecutor creates a new base executor
func NewBaseExecutor(cfg *config.Config, logger *logrus.Logger) *BaseExecutor {
	return &BaseExecutor{
		config: cfg,
		logger: logger,
	}
}

// ExecuteSteps executes a list of steps in order and returns results.
// Bootstrap runs fail fast on the first failed step; teardown runs continue
// past individual failures.
func (be *BaseExecutor) ExecuteSteps(ctx context.Context, steps []Executor, stepType string) (*ExecutionResult, error) {
	be.logger.Infof("Starting standalone kubelet %s", stepType)

	startTime := time.Now()
	result := &ExecutionResult{
		RunID:       uuid.NewString(),
		StepResults: make([]StepResult, 0),
	}

	for _, step := range steps {
		stepResult := be.executeStep(ctx, step, stepType)
		result.StepResults = append(result.StepResults, stepResult)

		if !stepResult.Success {
			if stepType == "bootstrap" {
				result.Success = false
				result.Error = stepResult.Error
				result.Duration = time.Since(startTime)
				result.StepCount = len(result.StepResults)

				be.logger.Errorf("Bootstrap failed at step %s: %s (completedSteps: %d, totalSteps: %d)",
					stepResult.StepName, stepResult.Error, len(result.StepResults), len(steps))

				return result, fmt.Errorf("bootstrap failed at step %s: %w", stepResult.StepName, errors.New(stepResult.Error))
			}
			be.logger.Warnf("Teardown step %s failed: %s (continuing with remaining steps)",
				stepResult.StepName, stepResult.Error)
		}
	}

	successfulSteps := countSuccessfulSteps(result.StepResults)
	result.Success = successfulSteps == len(steps)
	result.Duration = time.Since(startTime)
	result.StepCount = len(result.StepResults)

	if result.Success {
		be.logger.Infof("Standalone kubelet %s completed successfully (duration: %v, stepCount: %d)",
			stepType, result.Duration, result.StepCount)
	} else if stepType == "teardown" {
		be.logger.Warnf("Standalone kubelet %s completed with some failures (duration: %v, successfulSteps: %d, totalSteps: %d)",
			stepType, result.Duration, successfulSteps, len(steps))
		result.Error = fmt.Sprintf("completed with %d failed steps out of %d total steps",
			len(steps)-successfulSteps, len(steps))
	}

	return result, nil
}

// executeStep executes a single step and returns the result
func (be *BaseExecutor) executeStep(ctx context.Context, step Executor, stepType string) StepResult {
	stepName := step.GetName()
	startTime := time.Now()

	be.logger.Infof("Executing %s step %s", stepType, stepName)

	if step.IsCompleted(ctx) {
		be.logger.Infof("%s step: %s already completed", stepType, stepName)
		return createStepResult(stepName, startTime, true, "")
	}

	if bootstrapStep, ok := step.(StepExecutor); ok && stepType == "bootstrap" {
		if validationErr := bootstrapStep.Validate(ctx); validationErr != nil {
			be.logger.Errorf("%s step %s validation failed with error: %s", stepType, stepName, validationErr)
			return createStepResult(stepName, startTime, false, fmt.Sprintf("validation failed: %v", validationErr))
		}
	}

	if err := step.Execute(ctx); err != nil {
		be.logger.Errorf("%s step: %s failed with error: %s with duration %s", stepType, stepName, err, time.Since(startTime))
		return createStepResult(stepName, startTime, false, err.Error())
	}

	be.logger.Infof("%s step: %s completed successfully with duration %s", stepType, stepName, time.Since(startTime))
	return createStepResult(stepName, startTime, true, "")
}

func createStepResult(stepName string, startTime time.Time, success bool, errorMsg string) StepResult {
	return StepResult{
		StepName: stepName,
		Success:  success,
		Duration: time.Since(startTime),
		Error:    errorMsg,
	}
}

func countSuccessfulSteps(stepResults []StepResult) int {
	count := 0
	for _, result := range stepResults {
		if result.Success {
			count++
		}
	}
	return count
}
