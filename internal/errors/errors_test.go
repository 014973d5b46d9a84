package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

// 测试创建新错误
func (suite *ErrorsTestSuite) TestNew() {
	err := New(ErrInvalidBoardSize)
	suite.NotNil(err)
	suite.Equal(ErrInvalidBoardSize, err.Code)
	suite.Equal("无效的棋盘尺寸", err.Message)
	suite.Empty(err.Details)

	// 多个详情
	err = New(ErrInsufficientFaces, "需要 8 个", "提供 7 个")
	suite.Equal("需要 8 个; 提供 7 个", err.Details)
}

// 测试格式化错误创建
func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrUnknownTile, "tile_id=%d", 42)
	suite.Equal(ErrUnknownTile, err.Code)
	suite.Equal("tile_id=42", err.Details)
	suite.Equal("[2002] 棋盘上不存在该牌: tile_id=42", err.Error())
}

// 测试错误包装
func (suite *ErrorsTestSuite) TestWrap() {
	originalErr := errors.New("disk I/O error")
	wrappedErr := Wrap(originalErr, ErrDatabaseInsert)
	suite.Equal(ErrDatabaseInsert, wrappedErr.Code)
	suite.Equal("disk I/O error", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Unwrap())

	suite.Nil(Wrap(nil, ErrUnknown))

	// 包装已有的AppError，保留原始错误码
	appErr := New(ErrInvalidState, "尚未获胜")
	wrappedAppErr := Wrap(appErr, ErrDatabaseInsert, "保存成绩")
	suite.Equal(ErrInvalidState, wrappedAppErr.Code)
	suite.Contains(wrappedAppErr.Details, "保存成绩")
}

// 测试格式化错误包装
func (suite *ErrorsTestSuite) TestWrapf() {
	originalErr := errors.New("no such table")
	wrappedErr := Wrapf(originalErr, ErrDatabaseQuery, "查询 %s", "memory_4x4")
	suite.Equal(ErrDatabaseQuery, wrappedErr.Code)
	suite.Equal("查询 memory_4x4", wrappedErr.Details)
	suite.ErrorIs(wrappedErr, originalErr)
}

// 测试错误码判断
func (suite *ErrorsTestSuite) TestIs() {
	err := New(ErrInvalidState)
	suite.True(Is(err, ErrInvalidState))
	suite.False(Is(err, ErrUnknownTile))
	suite.False(Is(nil, ErrInvalidState))
	suite.False(Is(errors.New("标准错误"), ErrUnknown))

	// fmt包装后依然可以识别
	suite.True(Is(fmt.Errorf("提交成绩: %w", err), ErrInvalidState))
}

// 测试获取错误码
func (suite *ErrorsTestSuite) TestGetCode() {
	suite.Equal(ErrInvalidPlayerName, GetCode(New(ErrInvalidPlayerName)))
	suite.Equal(ErrUnknown, GetCode(errors.New("标准错误")))
	suite.Equal(ErrorCode(0), GetCode(nil))
}

// 测试WithCause
func (suite *ErrorsTestSuite) TestWithCause() {
	cause := errors.New("SQL语法错误")
	err := New(ErrDatabaseQuery).WithCause(cause)
	suite.Equal(cause, err.Cause)
	suite.Equal("SQL语法错误", err.Details)

	// 已有Details的情况
	err2 := New(ErrDatabaseQuery, "查询失败").WithCause(cause)
	suite.Equal("查询失败", err2.Details)
}

// 测试可重试与严重错误判断
func (suite *ErrorsTestSuite) TestClassification() {
	suite.True(IsRetryable(New(ErrDatabaseConnect)))
	suite.True(IsRetryable(New(ErrTimeout)))
	suite.False(IsRetryable(New(ErrInvalidState)))
	suite.False(IsRetryable(nil))

	suite.True(IsCritical(New(ErrConfigValidate)))
	suite.True(IsCritical(New(ErrDatabaseMigrate)))
	suite.False(IsCritical(New(ErrUnknownTile)))
	suite.False(IsCritical(nil))
}

// 测试调用栈捕获
func (suite *ErrorsTestSuite) TestStackCapture() {
	err := New(ErrUnknown)
	suite.NotEmpty(err.Stack)
	suite.NotEmpty(err.GetStack())
}

// 测试未知错误码
func (suite *ErrorsTestSuite) TestUnknownErrorCode() {
	err := New(ErrorCode(99999))
	suite.Equal(ErrorCode(99999), err.Code)
	suite.Equal("未知错误", err.Message)
}

// 测试游戏相关错误
func (suite *ErrorsTestSuite) TestGameErrors() {
	gameErrors := map[ErrorCode]string{
		ErrInvalidBoardSize:  "无效的棋盘尺寸",
		ErrInsufficientFaces: "牌面数量不足",
		ErrUnknownTile:       "棋盘上不存在该牌",
		ErrInvalidState:      "当前状态不允许该操作",
		ErrInvalidPlayerName: "无效的玩家名称",
		ErrInvalidSortColumn: "无效的排序字段",
	}

	for code, expectedMsg := range gameErrors {
		suite.Equal(expectedMsg, New(code).Message)
	}
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
